//go:build !windows

// Package osutils reports process privileges relevant to input capture.
package osutils

import (
	"os"
	"runtime"
)

// IsAdmin reports whether the process runs as root.
func IsAdmin() bool {
	return os.Geteuid() == 0
}

// PrivilegeHint explains what the current privileges mean for capture.
func PrivilegeHint(elevated bool) string {
	if elevated || runtime.GOOS != "linux" {
		return ""
	}
	return "Reading /dev/input needs root or membership in the input group"
}
