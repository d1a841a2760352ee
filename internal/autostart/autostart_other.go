//go:build !darwin && !windows && !linux

package autostart

// Enable enables auto-start on login
func Enable() error { return ErrUnsupported }

// Disable disables auto-start on login
func Disable() error { return ErrUnsupported }

// IsEnabled checks if auto-start is enabled
func IsEnabled() bool { return false }
