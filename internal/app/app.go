// Package app holds the state shared by capture, the web server and the
// tray: one tracker, its notifier, the settings store and the running
// capture strategy.
package app

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"keyoverlay/internal/capture"
	"keyoverlay/internal/config"
	"keyoverlay/internal/filter"
	"keyoverlay/internal/tracker"
	"keyoverlay/internal/window"
)

// State is constructed once in main and passed to every subsystem.
type State struct {
	Config   *config.Manager
	Tracker  *tracker.Tracker
	Notifier *tracker.Notifier
	Windows  window.Provider

	log zerolog.Logger

	// target mirrors the configured filter so the capture hot path never
	// takes the config lock.
	target   atomic.Pointer[filter.Target]
	strategy atomic.Pointer[strategyHolder]

	mu        sync.Mutex
	listeners []func(config.Config)
}

type strategyHolder struct {
	s   capture.Strategy
	err error
}

// Status is a point-in-time view for diagnostics.
type Status struct {
	Strategy   string        `json:"strategy"`
	State      string        `json:"state"`
	Error      string        `json:"error,omitempty"`
	Permission *bool         `json:"accessibility,omitempty"`
	Keys       []string      `json:"keys"`
	Target     filter.Target `json:"target"`
	Foreground *window.Info  `json:"foreground,omitempty"`
}

// New wires a tracker and notifier to cfg. cfg should already be loaded.
func New(cfg *config.Manager, windows window.Provider, log zerolog.Logger) *State {
	n := tracker.NewNotifier()
	s := &State{
		Config:   cfg,
		Tracker:  tracker.New(n),
		Notifier: n,
		Windows:  windows,
		log:      log,
	}
	t := cfg.Target()
	s.target.Store(&t)
	cfg.RegisterChangeCallback(s.configChanged)
	return s
}

// Target returns the current filter. Safe for the capture hot path.
func (s *State) Target() filter.Target {
	return *s.target.Load()
}

// SetTarget validates, stores and persists a new filter, then clears the
// tracker even if the target is unchanged.
func (s *State) SetTarget(t filter.Target) error {
	if err := s.Config.SetTarget(t); err != nil {
		return err
	}
	s.Tracker.Clear()
	s.log.Info().Str("mode", string(t.Mode)).Str("value", t.Value).Msg("Target changed")
	return nil
}

// ResetKeys clears every held key and broadcasts the empty set.
func (s *State) ResetKeys() {
	s.log.Debug().Msg("Resetting held keys")
	s.Tracker.Clear()
}

// OnConfigChange registers fn to run after every settings change.
func (s *State) OnConfigChange(fn func(config.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *State) configChanged() {
	cfg := s.Config.Get()

	prev := s.target.Swap(&cfg.Target)
	if prev == nil || *prev != cfg.Target {
		s.Tracker.Clear()
	}

	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}
}

// CaptureOptions builds strategy options from the current settings.
func (s *State) CaptureOptions() capture.Options {
	c := s.Config.Get().Capture
	return capture.Options{
		Tracker:             s.Tracker,
		Target:              s.Target,
		Windows:             s.Windows,
		Logger:              s.log.With().Str("component", "capture").Logger(),
		HookSource:          c.HookSource,
		PollInterval:        ms(c.PollIntervalMs),
		FilterRefreshEvents: c.FilterRefreshEvents,
		FilterMaxAge:        ms(c.FilterMaxAgeMs),
		FocusInterval:       ms(c.FocusCheckMs),
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// SetStrategy records the strategy that is (or failed to start) running.
func (s *State) SetStrategy(st capture.Strategy, err error) {
	s.strategy.Store(&strategyHolder{s: st, err: err})
}

// StrategyFailed records a strategy's terminal error.
func (s *State) StrategyFailed(err error) {
	if h := s.strategy.Load(); h != nil {
		s.strategy.Store(&strategyHolder{s: h.s, err: err})
	}
}

// Status reports the capture state and held keys.
func (s *State) Status() Status {
	st := Status{
		State:  capture.Idle.String(),
		Keys:   s.Tracker.Snapshot(),
		Target: s.Target(),
	}
	if h := s.strategy.Load(); h != nil {
		if h.s != nil {
			st.Strategy = h.s.Name()
			st.State = h.s.State().String()
		}
		if h.err != nil {
			st.Error = h.err.Error()
		}
	}
	if granted, checked := capture.PermissionGranted(); checked {
		st.Permission = &granted
	}
	if info, ok := s.Windows.Foreground(); ok {
		st.Foreground = &info
	}
	return st
}
