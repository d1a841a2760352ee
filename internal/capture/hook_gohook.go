//go:build cgo && (windows || darwin || gohook)

package capture

import (
	"context"
	"fmt"
	"sync"

	hook "github.com/robotn/gohook"
)

// libuiohook keeps one global hook per process.
var gohookMu sync.Mutex

type gohookSource struct{}

func newGohookSource() (Source, error) { return gohookSource{}, nil }

func (gohookSource) Name() string { return SourceGohook }

func (gohookSource) Run(ctx context.Context, emit func(Event), ready func()) error {
	if !gohookMu.TryLock() {
		return fmt.Errorf("gohook already running")
	}
	defer gohookMu.Unlock()

	events := hook.Start()
	defer hook.End()
	ready()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("gohook event stream closed")
			}
			if out, ok := uiohookEvent(ev.Kind, ev.Keycode, ev.Button); ok {
				emit(out)
			}
		}
	}
}
