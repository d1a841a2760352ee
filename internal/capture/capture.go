// Package capture observes global keyboard and mouse-button input and feeds
// it into a tracker, subject to the target-window filter.
//
// Three strategies exist because no single OS mechanism works everywhere:
// a system input hook, a fixed-rate key-state poll, and the macOS event
// tap. Exactly one runs per process. All of them apply the same rules at
// the tracker boundary: a press is recorded only while the filter admits,
// a release is honoured whenever its code is held, and losing the filter
// clears the tracker.
package capture

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"keyoverlay/internal/filter"
	"keyoverlay/internal/keys"
	"keyoverlay/internal/tracker"
	"keyoverlay/internal/window"
)

var (
	// ErrUnsupported means the strategy or source does not exist on this
	// platform or build.
	ErrUnsupported = errors.New("capture: not supported on this platform")
	// ErrPermission means the OS refused access to global input.
	ErrPermission = errors.New("capture: input monitoring permission not granted")
	// ErrStarted is returned by Run on a strategy that already ran.
	ErrStarted = errors.New("capture: strategy already started")
)

// Kind names a capture strategy.
type Kind string

const (
	KindHook    Kind = "hook"
	KindPolling Kind = "polling"
	KindTap     Kind = "tap"
)

// Kinds lists every strategy.
var Kinds = []Kind{KindHook, KindPolling, KindTap}

// ParseKind validates a strategy name. Empty or "auto" selects Default.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "auto" {
		return Default(), nil
	}
	for _, k := range Kinds {
		if Kind(s) == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown capture strategy %q", s)
}

// Default returns the preferred strategy for the running platform.
// Windows polls because low-level hooks can be starved or ignored by games
// that read raw input.
func Default() Kind {
	switch runtime.GOOS {
	case "windows":
		return KindPolling
	case "darwin":
		return KindTap
	default:
		return KindHook
	}
}

// State is the lifecycle of a strategy.
type State int32

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Strategy is one capture mechanism.
type Strategy interface {
	Name() string
	// Run captures until ctx is cancelled or a fatal error occurs. It must
	// be called at most once and may need to own its OS thread; see Launch.
	Run(ctx context.Context) error
	State() State
}

// Event is a resolved raw input event.
type Event struct {
	Key  keys.Key
	Down bool
}

// Options wires a strategy to the rest of the application.
type Options struct {
	Tracker *tracker.Tracker
	// Target returns the current filter configuration. It is called on
	// every event and must be cheap.
	Target  func() filter.Target
	Windows window.Provider
	Logger  zerolog.Logger

	// HookSource selects the hook backend: "native", "gohook", "evdev" or
	// empty for the platform default.
	HookSource string
	// PollInterval is the polling tick. Zero means 16ms.
	PollInterval time.Duration
	// FilterRefreshEvents and FilterMaxAge bound foreground-window queries
	// on the hook and tap event paths.
	FilterRefreshEvents int
	FilterMaxAge        time.Duration
	// FocusInterval is how often hook and tap check for filter loss.
	FocusInterval time.Duration
}

const (
	defaultPollInterval  = 16 * time.Millisecond
	defaultRefreshEvents = 20
	defaultMaxAge        = 250 * time.Millisecond
	defaultFocusInterval = 100 * time.Millisecond
)

func (o *Options) setDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.FilterRefreshEvents <= 0 {
		o.FilterRefreshEvents = defaultRefreshEvents
	}
	if o.FilterMaxAge <= 0 {
		o.FilterMaxAge = defaultMaxAge
	}
	if o.FocusInterval <= 0 {
		o.FocusInterval = defaultFocusInterval
	}
	if o.Windows == nil {
		o.Windows = window.New()
	}
	if o.Target == nil {
		o.Target = func() filter.Target { return filter.Target{Mode: filter.All} }
	}
}

// New builds the strategy of the given kind.
func New(kind Kind, opts Options) (Strategy, error) {
	if opts.Tracker == nil {
		return nil, errors.New("capture: tracker is required")
	}
	opts.setDefaults()

	switch kind {
	case KindHook:
		src, err := newSource(opts.HookSource)
		if err != nil {
			return nil, err
		}
		return newHookStrategy(src, opts), nil
	case KindPolling:
		reader, err := newKeyStateReader()
		if err != nil {
			return nil, err
		}
		return newPollStrategy(reader, keys.MonitoredKeys, opts), nil
	case KindTap:
		return newTapStrategy(opts)
	}
	return nil, fmt.Errorf("unknown capture strategy %q", kind)
}

// Launch runs s on its own goroutine locked to an OS thread, as hook and
// tap APIs require. Setup failures are logged rather than propagated; the
// returned channel receives Run's result and is then closed.
func Launch(ctx context.Context, s Strategy, log zerolog.Logger) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		log.Info().Str("strategy", s.Name()).Msg("Capture starting")
		err := s.Run(ctx)
		switch {
		case err == nil || errors.Is(err, context.Canceled):
			log.Info().Str("strategy", s.Name()).Msg("Capture stopped")
		case errors.Is(err, ErrPermission):
			log.Warn().Err(err).Str("strategy", s.Name()).Msg("Capture disabled until permission is granted")
		default:
			log.Error().Err(err).Str("strategy", s.Name()).Msg("Capture failed")
		}
		done <- err
	}()
	return done
}

// lifecycle is the Idle -> Running -> Stopped state shared by strategies.
type lifecycle struct {
	state   atomic.Int32
	started atomic.Bool
}

func (l *lifecycle) State() State { return State(l.state.Load()) }

// begin claims the strategy for a single Run.
func (l *lifecycle) begin() bool {
	return l.started.CompareAndSwap(false, true)
}

func (l *lifecycle) running() { l.state.CompareAndSwap(int32(Idle), int32(Running)) }

func (l *lifecycle) stop() { l.state.Store(int32(Stopped)) }
