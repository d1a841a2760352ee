//go:build !windows && !(darwin && cgo)

package hotkey

import (
	"context"

	"keyoverlay/internal/tracker"
)

// Without an OS shortcut API the combos only fire while the target filter
// admits input, since they are matched against tracked keys.
func (m *Manager) startPlatform(ctx context.Context, held *tracker.Notifier) error {
	if held == nil {
		return ErrUnsupported
	}
	m.log.Info().Int("hotkeys", len(m.Combos())).Msg("Matching hotkeys against held keys")
	go m.watchHeld(ctx, held)
	return nil
}
