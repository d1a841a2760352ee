//go:build linux

package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnableDisable tests the XDG autostart entry lifecycle
func TestEnableDisable(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if IsEnabled() {
		t.Fatal("Expected disabled in a fresh config dir")
	}
	if err := Set(true); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if !IsEnabled() {
		t.Fatal("Expected enabled after Enable")
	}

	data, err := os.ReadFile(filepath.Join(dir, "autostart", "keyoverlay.desktop"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Exec=") || !strings.Contains(string(data), "[Desktop Entry]") {
		t.Errorf("Unexpected desktop entry:\n%s", data)
	}

	if err := Set(false); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	if IsEnabled() {
		t.Error("Expected disabled after Disable")
	}
	if err := Disable(); err != nil {
		t.Errorf("Expected second Disable to succeed, got %v", err)
	}
}

// TestQuoteExec tests escaping of paths with spaces
func TestQuoteExec(t *testing.T) {
	if got := quoteExec("/usr/bin/keyoverlay"); got != "/usr/bin/keyoverlay" {
		t.Errorf("Expected unquoted path, got %s", got)
	}
	if got := quoteExec("/opt/Key Overlay/bin"); got != `"/opt/Key Overlay/bin"` {
		t.Errorf("Expected quoted path, got %s", got)
	}
}
