package capture

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Source delivers raw input from an OS hook. Run installs the hook on the
// calling goroutine, calls ready once events will flow, and then emits
// until ctx is done. emit is called from OS callbacks and must not block.
type Source interface {
	Name() string
	Run(ctx context.Context, emit func(Event), ready func()) error
}

// Hook source names.
const (
	SourceNative = "native"
	SourceGohook = "gohook"
	SourceEvdev  = "evdev"
)

// DefaultSource returns the hook source used when none is configured.
func DefaultSource() string {
	switch runtime.GOOS {
	case "windows":
		return SourceNative
	case "linux":
		return SourceEvdev
	default:
		return SourceGohook
	}
}

func newSource(name string) (Source, error) {
	if name == "" || name == "auto" {
		name = DefaultSource()
	}
	switch name {
	case SourceNative:
		return newNativeSource()
	case SourceGohook:
		return newGohookSource()
	case SourceEvdev:
		return newEvdevSource()
	}
	return nil, fmt.Errorf("unknown hook source %q", name)
}

// hookStrategy hands events from the source's callback thread to a
// consumer goroutine through a Queue.
type hookStrategy struct {
	lifecycle
	source Source
	queue  *Queue
	gate   *gate
	opts   Options
}

func newHookStrategy(src Source, opts Options) *hookStrategy {
	return &hookStrategy{
		source: src,
		queue:  NewQueue(),
		gate:   newGate(opts),
		opts:   opts,
	}
}

func (h *hookStrategy) Name() string { return string(KindHook) + "/" + h.source.Name() }

func (h *hookStrategy) Run(ctx context.Context) error {
	if !h.begin() {
		return ErrStarted
	}
	defer h.stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := h.opts.Logger.With().Str("source", h.source.Name()).Logger()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.gate.consume(runCtx, h.queue)
	}()
	go func() {
		defer wg.Done()
		watchFocus(runCtx, h.opts.FocusInterval, h.opts.Target, h.opts.Windows, h.opts.Tracker, log)
	}()

	err := h.source.Run(runCtx, h.queue.Push, func() {
		h.running()
		log.Info().Msg("Input hook installed")
	})
	h.queue.Close()
	cancel()
	wg.Wait()

	if err != nil {
		return fmt.Errorf("hook source %s: %w", h.source.Name(), err)
	}
	return ctx.Err()
}
