package app

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/plantee/storefront/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.UTC
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	jobs := []struct {
		schedule string
		fn       func()
	}{
		{"@every 30s", func() {
			go a.SchedSystemMonitorTask()
			go a.SchedProcessMonitorTask()
		}},
		{"@every 10m", a.SchedLowStockTask},
		{"@hourly", a.SchedIdempotencyPurgeTask},
	}
	for _, j := range jobs {
		if _, err := a.sched.AddFunc(j.schedule, j.fn); err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // percentage * 100
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("plantee_cpuuse", int64(cpuuse*100))
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("plantee_memuse", int64(meminfo.RSS/1024/1024))
	}
}

// SchedLowStockTask records how many plants are at or below the low stock
// threshold and logs each of them.
func (a *Application) SchedLowStockTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	threshold := a.appConfig.System.LowStockThreshold
	plants, err := a.store.Plants.LowStock(ctx, threshold)
	if err != nil {
		zap.L().Error("low stock scan failed", zap.String("namespace", "catalog"), zap.Error(err))
		return
	}
	metrics.SetGauge("catalog_low_stock", int64(len(plants)))
	for _, p := range plants {
		zap.L().Warn("plant stock is low",
			zap.String("namespace", "catalog"),
			zap.String("id", p.ID),
			zap.String("name", p.Name),
			zap.Int("stock", p.StockQuantity),
			zap.Int("threshold", threshold))
	}
}

func (a *Application) SchedIdempotencyPurgeTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	if a.idem == nil {
		return
	}
	n, err := a.idem.Purge(context.Background())
	if err != nil {
		zap.L().Error("idempotency purge failed", zap.String("namespace", "idempotency"), zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("purged expired idempotency keys", zap.String("namespace", "idempotency"), zap.Int("count", n))
	}
}
