package capture

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"keyoverlay/internal/filter"
	"keyoverlay/internal/tracker"
	"keyoverlay/internal/window"
)

// gate applies the filter rules to event-driven strategies.
type gate struct {
	tracker *tracker.Tracker
	target  func() filter.Target
	cache   *filter.Cache
}

func newGate(opts Options) *gate {
	return &gate{
		tracker: opts.Tracker,
		target:  opts.Target,
		cache:   filter.NewCache(opts.Windows, opts.FilterRefreshEvents, opts.FilterMaxAge),
	}
}

func (g *gate) handle(ev Event) {
	t := g.target()
	if ev.Down {
		if g.cache.Admit(t) {
			g.tracker.Press(ev.Key.Code, ev.Key.Label)
		}
		return
	}
	// Releases bypass the cached decision: a key that was admitted must
	// come back up even if focus moved while it was held.
	if g.tracker.IsDown(ev.Key.Code) || t.Mode == filter.All {
		g.tracker.Release(ev.Key.Code)
	}
}

// consume drains q into g until ctx is done or q is closed.
func (g *gate) consume(ctx context.Context, q *Queue) {
	for {
		ev, ok := q.Pop(ctx)
		if !ok {
			return
		}
		g.handle(ev)
	}
}

// watchFocus clears the tracker when keys are held but the filter no
// longer admits the foreground window. It only queries the window while
// something is held.
func watchFocus(ctx context.Context, interval time.Duration, target func() filter.Target, windows window.Provider, t *tracker.Tracker, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if t.Len() == 0 {
			continue
		}
		if !filter.Admit(target(), windows) {
			log.Debug().Msg("Target window lost focus, clearing keys")
			t.Clear()
		}
	}
}
