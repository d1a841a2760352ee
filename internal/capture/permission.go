package capture

import "sync"

// permissionCache remembers the last accessibility check. The tap strategy
// refreshes it on every start; readers such as the status endpoint only
// see the cached answer.
type permissionCache struct {
	mu      sync.Mutex
	probe   func() bool
	checked bool
	granted bool
}

// Check queries the OS and stores the answer.
func (c *permissionCache) Check() bool {
	granted := c.probe()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = true
	c.granted = granted
	return granted
}

// Cached returns the last answer and whether a check has happened.
func (c *permissionCache) Cached() (granted, checked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.granted, c.checked
}

var accessibility = &permissionCache{probe: accessibilityProbe}

// PermissionGranted reports the last known input-monitoring permission
// state. checked is false until a strategy that needs the permission has
// started.
func PermissionGranted() (granted, checked bool) {
	return accessibility.Cached()
}
