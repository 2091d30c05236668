package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyops/tafboard/pkg/logger"
)

func TestCacheEmpty(t *testing.T) {
	cache := NewCache(time.Minute, logger.NewNop())

	assert.Nil(t, cache.Get())
	assert.True(t, cache.IsStale(), "an empty cache counts as stale")
}

func TestCacheSetAndGet(t *testing.T) {
	cache := NewCache(time.Minute, logger.NewNop())
	snapshot := &Snapshot{GeneratedAt: time.Now().UTC()}

	cache.Set(snapshot)
	require.Same(t, snapshot, cache.Get())
	assert.False(t, cache.IsStale())
}

func TestCacheStaleAfterExpiry(t *testing.T) {
	cache := NewCache(10*time.Millisecond, logger.NewNop())
	cache.Set(&Snapshot{GeneratedAt: time.Now().UTC()})

	require.Eventually(t, cache.IsStale, time.Second, 5*time.Millisecond,
		"snapshot outlives its expiry but is still served")
	assert.NotNil(t, cache.Get(), "stale snapshots stay available")
}

func TestCacheReplaceResetsStaleness(t *testing.T) {
	cache := NewCache(30*time.Millisecond, logger.NewNop())
	cache.Set(&Snapshot{GeneratedAt: time.Now().UTC()})
	require.Eventually(t, cache.IsStale, time.Second, 5*time.Millisecond)

	cache.Set(&Snapshot{GeneratedAt: time.Now().UTC()})
	assert.False(t, cache.IsStale())
}
