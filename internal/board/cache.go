package board

import (
	"sync"
	"time"

	"github.com/skyops/tafboard/pkg/logger"
)

// Cache holds the current snapshot with thread-safe replacement.
// Each refresh swaps in a fresh snapshot; there is no partial mutation.
type Cache struct {
	snapshot *Snapshot
	expiry   time.Duration
	setAt    time.Time
	logger   *logger.Logger
	mu       sync.RWMutex
}

// NewCache creates a snapshot cache. Data older than expiry is reported
// as stale but still served, so the UI can flag it rather than go blank.
func NewCache(expiry time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		expiry: expiry,
		logger: log.Named("board-cache"),
	}
}

// Get returns the current snapshot, or nil before the first refresh.
func (c *Cache) Get() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Set replaces the cached snapshot.
func (c *Cache) Set(snapshot *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
	c.setAt = time.Now()

	c.logger.Debug("Board snapshot cached",
		logger.Time("generated_at", snapshot.GeneratedAt),
		logger.Int("destination_rows", len(snapshot.Destinations)),
		logger.Int("enroute_rows", len(snapshot.Enroute)))
}

// IsStale reports whether the cached snapshot has outlived its expiry.
func (c *Cache) IsStale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return true
	}
	return time.Since(c.setAt) > c.expiry
}
