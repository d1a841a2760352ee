//go:build !windows && !(darwin && cgo)

package hotkey

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"keyoverlay/internal/tracker"
)

// TestStartMatchesHeldKeys tests the held-key backend end to end
func TestStartMatchesHeldKeys(t *testing.T) {
	n := tracker.NewNotifier()
	tr := tracker.New(n)

	m := NewManager(zerolog.Nop())
	fired := collect(m, "Ctrl+Shift+F12")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx, n); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	tr.Press(1, "CTRL")
	tr.Press(2, "SHIFT")
	tr.Press(3, "F12")
	expectFires(t, fired, 1)
}

// TestStartWithoutNotifier tests the unsupported path
func TestStartWithoutNotifier(t *testing.T) {
	m := NewManager(zerolog.Nop())
	collect(m, "F1")
	if err := m.Start(context.Background(), nil); err != ErrUnsupported {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
}
