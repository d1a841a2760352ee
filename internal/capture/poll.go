package capture

import (
	"context"
	"time"

	"keyoverlay/internal/filter"
	"keyoverlay/internal/keys"
)

// KeyStateReader reports the instantaneous state of a Windows virtual key.
type KeyStateReader interface {
	IsDown(vk uint32) bool
}

// pollStrategy samples a fixed key set on a timer and diffs it against the
// previous sample. It installs no hook, so it can neither be blocked by
// nor interfere with other applications' input handling.
type pollStrategy struct {
	lifecycle
	reader KeyStateReader
	keys   []uint32
	opts   Options

	prev     map[uint32]bool
	admitted bool
}

func newPollStrategy(reader KeyStateReader, monitored []uint32, opts Options) *pollStrategy {
	return &pollStrategy{
		reader: reader,
		keys:   monitored,
		opts:   opts,
		prev:   make(map[uint32]bool, len(monitored)),
	}
}

func (p *pollStrategy) Name() string { return string(KindPolling) }

func (p *pollStrategy) Run(ctx context.Context) error {
	if !p.begin() {
		return ErrStarted
	}
	defer p.stop()

	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	p.running()
	p.opts.Logger.Info().
		Dur("interval", p.opts.PollInterval).
		Int("keys", len(p.keys)).
		Msg("Key-state polling started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick evaluates the filter once, then reports every changed key.
func (p *pollStrategy) tick() {
	if !filter.Admit(p.opts.Target(), p.opts.Windows) {
		if p.admitted {
			p.opts.Tracker.Clear()
		}
		p.admitted = false
		// Keys still held when focus returns are reported as fresh presses.
		clear(p.prev)
		return
	}
	p.admitted = true

	for _, vk := range p.keys {
		down := p.reader.IsDown(vk)
		if down == p.prev[vk] {
			continue
		}
		p.prev[vk] = down

		k := keys.VirtualKey(vk, false)
		if down {
			p.opts.Tracker.Press(k.Code, k.Label)
		} else {
			p.opts.Tracker.Release(k.Code)
		}
	}
}
