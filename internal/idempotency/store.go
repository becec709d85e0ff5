package idempotency

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	json       = jsoniter.ConfigCompatibleWithStandardLibrary
	bucketName = []byte("idempotency")
)

const (
	stateInFlight = "in_flight"
	stateDone     = "done"
)

type entry struct {
	State     string    `json:"state"`
	Value     string    `json:"value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store remembers request keys and the record each one produced. Keys are
// namespaced by scope. Entries older than the TTL are treated as absent.
type Store struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open idempotency db")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create idempotency bucket")
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

func key(scope, k string) []byte {
	return []byte(scope + ":" + k)
}

func (s *Store) expired(e entry) bool {
	return s.ttl > 0 && s.now().Sub(e.CreatedAt) > s.ttl
}

func (s *Store) get(tx *bolt.Tx, scope, k string) (entry, bool) {
	raw := tx.Bucket(bucketName).Get(key(scope, k))
	if raw == nil {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || s.expired(e) {
		return entry{}, false
	}
	return e, true
}

func (s *Store) put(tx *bolt.Tx, scope, k string, e entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketName).Put(key(scope, k), raw)
}

// TryLock claims the key. It returns false when the key is already claimed
// or completed.
func (s *Store) TryLock(_ context.Context, scope, k string) (bool, error) {
	locked := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		if _, ok := s.get(tx, scope, k); ok {
			return nil
		}
		locked = true
		return s.put(tx, scope, k, entry{State: stateInFlight, CreatedAt: s.now()})
	})
	if err != nil {
		return false, errors.Wrap(err, "lock idempotency key")
	}
	return locked, nil
}

// Remember marks the key completed with the produced value.
func (s *Store) Remember(_ context.Context, scope, k, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return s.put(tx, scope, k, entry{State: stateDone, Value: value, CreatedAt: s.now()})
	})
	return errors.Wrap(err, "remember idempotency key")
}

// Recall returns the value stored for a completed key.
func (s *Store) Recall(_ context.Context, scope, k string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		e, ok := s.get(tx, scope, k)
		if ok && e.State == stateDone {
			value, found = e.Value, true
		}
		return nil
	})
	if err != nil {
		return "", false, errors.Wrap(err, "recall idempotency key")
	}
	return value, found, nil
}

// Release drops an in-flight claim so the request can be retried.
func (s *Store) Release(_ context.Context, scope, k string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		e, ok := s.get(tx, scope, k)
		if !ok || e.State != stateInFlight {
			return nil
		}
		return tx.Bucket(bucketName).Delete(key(scope, k))
	})
	return errors.Wrap(err, "release idempotency key")
}

// Purge removes expired entries and returns how many were dropped.
func (s *Store) Purge(_ context.Context) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil || s.expired(e) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "purge idempotency keys")
	}
	return removed, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
