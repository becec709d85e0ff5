package idempotency

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "idempotency.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLockRememberRecall(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, time.Hour)

	ok, err := s.TryLock(ctx, "orders", "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.TryLock(ctx, "orders", "k1")
	require.NoError(t, err)
	assert.False(t, ok, "in-flight key must not be claimed twice")

	_, found, err := s.Recall(ctx, "orders", "k1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Remember(ctx, "orders", "k1", "order-1"))
	value, found, err := s.Recall(ctx, "orders", "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "order-1", value)

	// scopes are independent
	ok, err = s.TryLock(ctx, "contacts", "k1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseAllowsRetry(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, time.Hour)

	ok, err := s.TryLock(ctx, "orders", "k2")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Release(ctx, "orders", "k2"))

	ok, err = s.TryLock(ctx, "orders", "k2")
	require.NoError(t, err)
	assert.True(t, ok)

	// completed keys survive a release
	require.NoError(t, s.Remember(ctx, "orders", "k2", "order-2"))
	require.NoError(t, s.Release(ctx, "orders", "k2"))
	_, found, err := s.Recall(ctx, "orders", "k2")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestExpiryAndPurge(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, time.Minute)
	clock := time.Now()
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Remember(ctx, "orders", "old", "order-1"))
	clock = clock.Add(2 * time.Minute)
	require.NoError(t, s.Remember(ctx, "orders", "fresh", "order-2"))

	_, found, err := s.Recall(ctx, "orders", "old")
	require.NoError(t, err)
	assert.False(t, found)

	removed, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	value, found, err := s.Recall(ctx, "orders", "fresh")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "order-2", value)
}
