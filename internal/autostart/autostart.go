// Package autostart registers the overlay to start on login. Each platform
// has its own implementation file.
package autostart

import (
	"errors"
	"fmt"
	"os"
)

const (
	appName = "keyoverlay"
	label   = "io.keyoverlay.agent"
)

// ErrUnsupported is returned on platforms without a login-item mechanism.
var ErrUnsupported = errors.New("autostart: not supported on this platform")

// executablePath returns the path to the currently running executable.
func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return exe, nil
}

// Set enables or disables auto-start.
func Set(enabled bool) error {
	if enabled {
		return Enable()
	}
	return Disable()
}
