package metrics

import (
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
)

// Point is one recorded value of a metric.
type Point struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

var (
	mu       sync.RWMutex
	storage  tstorage.Storage
	counters = map[string]int64{}
)

// InitMetrics opens the time series storage under workdir/data/metrics.
// An empty workdir keeps points in memory only.
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		_ = storage.Close()
		storage = nil
	}
	counters = map[string]int64{}
	opts := []tstorage.Option{
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(6 * time.Hour),
		tstorage.WithRetention(14 * 24 * time.Hour),
	}
	if workdir != "" {
		opts = append(opts, tstorage.WithDataPath(path.Join(workdir, "data", "metrics")))
	}
	s, err := tstorage.NewStorage(opts...)
	if err != nil {
		return errors.Wrap(err, "open metrics storage")
	}
	storage = s
	return nil
}

func insert(name string, value float64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
	}})
}

// SetGauge records the current value of a gauge.
func SetGauge(name string, value int64) {
	insert(name, float64(value))
}

// Incr adds delta to a process lifetime counter and records the new total.
func Incr(name string, delta int64) int64 {
	mu.Lock()
	counters[name] += delta
	total := counters[name]
	mu.Unlock()
	insert(name, float64(total))
	return total
}

// Counter returns the current total of a counter.
func Counter(name string) int64 {
	mu.RLock()
	defer mu.RUnlock()
	return counters[name]
}

// Query returns the points of a metric recorded at or after since.
func Query(name string, since time.Time) ([]Point, error) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return nil, errors.New("metrics storage not initialized")
	}
	rows, err := storage.Select(name, nil, since.Unix(), time.Now().Unix()+1)
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return []Point{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select metric %s", name)
	}
	points := make([]Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, Point{Timestamp: r.Timestamp, Value: r.Value})
	}
	return points, nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
