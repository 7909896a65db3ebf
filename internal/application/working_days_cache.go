package application

import (
	"sync"
	"time"

	"github.com/example/cmms-backend/internal/calendar"
)

// workingDaysCache stores recently loaded tenant working-day sets so that
// recurrence processing does not hit the tenant store on every transition.
type workingDaysCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]workingDaysCacheEntry
}

type workingDaysCacheEntry struct {
	days      calendar.WorkingDays
	expiresAt time.Time
}

func newWorkingDaysCache(ttl time.Duration, maxEntries int, now func() time.Time) *workingDaysCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &workingDaysCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]workingDaysCacheEntry),
	}
}

func (c *workingDaysCache) Get(tenantID string) (calendar.WorkingDays, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[tenantID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, tenantID)
		c.mu.Unlock()
		return nil, false
	}
	return entry.days.Clone(), true
}

func (c *workingDaysCache) Store(tenantID string, days calendar.WorkingDays) {
	if c == nil {
		return
	}
	cloned := days.Clone()
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[tenantID] = workingDaysCacheEntry{days: cloned, expiresAt: expiry}
}

func (c *workingDaysCache) Invalidate(tenantID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
}

func (c *workingDaysCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *workingDaysCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
