package filter

import (
	"sync"
	"time"

	"keyoverlay/internal/window"
)

// Cache bounds how often the foreground window is queried on a hot event
// path. A decision is reused for up to every events or maxAge, whichever
// comes first, and is dropped whenever the target changes.
type Cache struct {
	provider window.Provider
	every    int
	maxAge   time.Duration
	now      func() time.Time

	mu     sync.Mutex
	valid  bool
	target Target
	admit  bool
	events int
	at     time.Time
}

// NewCache returns a cache over p. every < 1 is treated as 1, which
// queries on every call.
func NewCache(p window.Provider, every int, maxAge time.Duration) *Cache {
	if every < 1 {
		every = 1
	}
	return &Cache{
		provider: p,
		every:    every,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Admit returns the cached decision for t, refreshing it when stale.
func (c *Cache) Admit(t Target) bool {
	if !t.NeedsWindow() {
		return Matches(t, window.Info{}, false)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.valid || c.target != t || c.events >= c.every || now.Sub(c.at) >= c.maxAge {
		c.admit = Admit(t, c.provider)
		c.target = t
		c.valid = true
		c.events = 0
		c.at = now
	}
	c.events++
	return c.admit
}

// Invalidate forces the next Admit to query the window.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}
