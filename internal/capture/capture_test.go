package capture

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"keyoverlay/internal/filter"
	"keyoverlay/internal/keys"
	"keyoverlay/internal/tracker"
	"keyoverlay/internal/window"
)

var (
	game  = window.Info{ID: "100", Title: "Game", Process: "game.exe", Class: "GameWnd"}
	other = window.Info{ID: "200", Title: "Browser", Process: "browser.exe", Class: "BrowserWnd"}
)

type targetBox struct {
	mu sync.Mutex
	t  filter.Target
}

func (b *targetBox) get() filter.Target {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.t
}

func (b *targetBox) set(t filter.Target) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.t = t
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type fakeSource struct {
	events chan Event
	err    error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Run(ctx context.Context, emit func(Event), ready func()) error {
	if f.err != nil {
		return f.err
	}
	ready()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-f.events:
			emit(ev)
		}
	}
}

func startHook(t *testing.T, target *targetBox, windows window.Provider) (*tracker.Tracker, *fakeSource, *hookStrategy) {
	t.Helper()
	tr := tracker.New(nil)
	src := &fakeSource{events: make(chan Event, 16)}
	h := newHookStrategy(src, Options{
		Tracker:             tr,
		Target:              target.get,
		Windows:             windows,
		Logger:              zerolog.Nop(),
		FilterRefreshEvents: 1,
		FilterMaxAge:        time.Hour,
		FocusInterval:       time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	eventually(t, "hook running", func() bool { return h.State() == Running })
	return tr, src, h
}

// TestHookPressAndRelease tests event flow from source to tracker
func TestHookPressAndRelease(t *testing.T) {
	target := &targetBox{t: filter.Target{Mode: filter.All}}
	tr, src, _ := startHook(t, target, window.NewStatic(game, true))

	a := keys.Uiohook(0x001E)
	src.events <- Event{Key: a, Down: true}
	eventually(t, "A pressed", func() bool { return tr.IsDown(a.Code) })

	src.events <- Event{Key: a, Down: false}
	eventually(t, "A released", func() bool { return !tr.IsDown(a.Code) })
}

// TestGateRejectsFilteredPress tests that presses and releases outside the
// target window leave the tracker untouched
func TestGateRejectsFilteredPress(t *testing.T) {
	tr := tracker.New(nil)
	target := &targetBox{t: filter.Target{Mode: filter.Process, Value: "game.exe"}}
	g := newGate(Options{
		Tracker:             tr,
		Target:              target.get,
		Windows:             window.NewStatic(other, true),
		FilterRefreshEvents: 1,
		FilterMaxAge:        time.Hour,
	})

	a := keys.Uiohook(0x001E)
	g.handle(Event{Key: a, Down: true})
	g.handle(Event{Key: a, Down: false})
	if tr.IsDown(a.Code) || tr.Len() != 0 {
		t.Errorf("Expected press in non-target window to be ignored, got %v", tr.Snapshot())
	}

	target.set(filter.Target{Mode: filter.All})
	g.handle(Event{Key: a, Down: true})
	if !tr.IsDown(a.Code) {
		t.Error("Expected press to be admitted in all mode")
	}
}

// TestHookReleaseAfterFilterChange tests that a key pressed while admitted
// is released even after focus moves away
func TestHookReleaseAfterFilterChange(t *testing.T) {
	target := &targetBox{t: filter.Target{Mode: filter.Process, Value: "game.exe"}}
	windows := window.NewStatic(game, true)
	tr, src, _ := startHook(t, target, windows)

	w := keys.Uiohook(0x0011)
	src.events <- Event{Key: w, Down: true}
	eventually(t, "W pressed", func() bool { return tr.IsDown(w.Code) })

	windows.Set(other, true)
	src.events <- Event{Key: w, Down: false}
	eventually(t, "W released", func() bool { return tr.Len() == 0 })
}

// TestHookSourceFailure tests that a setup failure ends in Stopped without
// ever reaching Running
func TestHookSourceFailure(t *testing.T) {
	src := &fakeSource{err: ErrPermission}
	h := newHookStrategy(src, Options{
		Tracker:       tracker.New(nil),
		Target:        func() filter.Target { return filter.Target{Mode: filter.All} },
		Windows:       window.NewStatic(game, true),
		Logger:        zerolog.Nop(),
		FocusInterval: time.Hour,
	})

	err := h.Run(context.Background())
	if !errors.Is(err, ErrPermission) {
		t.Errorf("Expected ErrPermission, got %v", err)
	}
	if h.State() != Stopped {
		t.Errorf("Expected stopped, got %s", h.State())
	}
	if err := h.Run(context.Background()); !errors.Is(err, ErrStarted) {
		t.Errorf("Expected ErrStarted on second run, got %v", err)
	}
}

// TestFocusWatcherClears tests that losing the target window clears held keys
func TestFocusWatcherClears(t *testing.T) {
	tr := tracker.New(nil)
	windows := window.NewStatic(game, true)
	target := func() filter.Target { return filter.Target{Mode: filter.Process, Value: "game.exe"} }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchFocus(ctx, 5*time.Millisecond, target, windows, tr, zerolog.Nop())

	tr.Press(1, "A")
	time.Sleep(30 * time.Millisecond)
	if !tr.IsDown(1) {
		t.Fatal("Expected key to stay while the target has focus")
	}

	windows.Set(other, true)
	eventually(t, "tracker cleared", func() bool { return tr.Len() == 0 })
}

// TestFocusWatcherIdleWithoutKeys tests that no window is queried while
// nothing is held
func TestFocusWatcherIdleWithoutKeys(t *testing.T) {
	tr := tracker.New(nil)
	windows := window.NewStatic(other, true)
	target := func() filter.Target { return filter.Target{Mode: filter.Process, Value: "game.exe"} }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchFocus(ctx, 5*time.Millisecond, target, windows, tr, zerolog.Nop())

	time.Sleep(30 * time.Millisecond)
	if n := windows.Calls(); n != 0 {
		t.Errorf("Expected no window queries with an empty tracker, got %d", n)
	}

	tr.Press(1, "A")
	eventually(t, "tracker cleared", func() bool { return tr.Len() == 0 })
	if windows.Calls() == 0 {
		t.Error("Expected a window query once a key is held")
	}
}

type fakeReader struct {
	mu   sync.Mutex
	down map[uint32]bool
}

func (f *fakeReader) IsDown(vk uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.down[vk]
}

func (f *fakeReader) set(vk uint32, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down[vk] = down
}

func newTestPoll(target *targetBox, windows window.Provider) (*pollStrategy, *fakeReader, *tracker.Tracker) {
	tr := tracker.New(nil)
	reader := &fakeReader{down: make(map[uint32]bool)}
	opts := Options{
		Tracker: tr,
		Target:  target.get,
		Windows: windows,
		Logger:  zerolog.Nop(),
	}
	opts.setDefaults()
	return newPollStrategy(reader, keys.MonitoredKeys, opts), reader, tr
}

// TestPollDiff tests press and release synthesis from key-state samples
func TestPollDiff(t *testing.T) {
	target := &targetBox{t: filter.Target{Mode: filter.All}}
	p, reader, tr := newTestPoll(target, window.NewStatic(game, true))

	reader.set(keys.VKLShift, true)
	reader.set(keys.VKRShift, true)
	reader.set('A', true)
	p.tick()
	if got := tr.Snapshot(); !reflect.DeepEqual(got, []string{"A", "SHIFT"}) && !reflect.DeepEqual(got, []string{"SHIFT", "A"}) {
		t.Errorf("Expected SHIFT and A, got %v", got)
	}
	if tr.Len() != 3 {
		t.Errorf("Expected 3 physical keys, got %d", tr.Len())
	}

	reader.set(keys.VKLShift, false)
	p.tick()
	if !contains(tr.Snapshot(), "SHIFT") {
		t.Error("Expected SHIFT to stay while right shift is held")
	}

	reader.set(keys.VKRShift, false)
	reader.set('A', false)
	p.tick()
	if tr.Len() != 0 {
		t.Errorf("Expected all released, got %v", tr.Snapshot())
	}
}

// TestPollClearsOnFilterLoss tests the bulk release when the target window
// loses focus, and re-press when it comes back
func TestPollClearsOnFilterLoss(t *testing.T) {
	target := &targetBox{t: filter.Target{Mode: filter.Title, Value: "game"}}
	windows := window.NewStatic(game, true)
	p, reader, tr := newTestPoll(target, windows)

	reader.set('W', true)
	p.tick()
	if !tr.IsDown('W') {
		t.Fatal("Expected W pressed")
	}

	windows.Set(other, true)
	p.tick()
	if tr.Len() != 0 {
		t.Errorf("Expected clear on focus loss, got %v", tr.Snapshot())
	}

	// Still held when focus returns.
	windows.Set(game, true)
	p.tick()
	if !tr.IsDown('W') {
		t.Error("Expected W to be reported again after focus returns")
	}
}

// TestPollDisabledNeverPresses tests that a disabled filter records nothing
func TestPollDisabledNeverPresses(t *testing.T) {
	target := &targetBox{t: filter.Target{Mode: filter.Disabled}}
	windows := window.NewStatic(game, true)
	p, reader, tr := newTestPoll(target, windows)

	reader.set('Q', true)
	p.tick()
	p.tick()
	if tr.Len() != 0 {
		t.Errorf("Expected nothing tracked, got %v", tr.Snapshot())
	}
	if windows.Calls() != 0 {
		t.Errorf("Expected no window queries in disabled mode, got %d", windows.Calls())
	}
}

// TestPollRunLifecycle tests the state machine of a running poller
func TestPollRunLifecycle(t *testing.T) {
	target := &targetBox{t: filter.Target{Mode: filter.All}}
	p, reader, tr := newTestPoll(target, window.NewStatic(game, true))
	p.opts.PollInterval = time.Millisecond

	if p.State() != Idle {
		t.Errorf("Expected idle, got %s", p.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := Launch(ctx, p, zerolog.Nop())

	reader.set(keys.VKLButton, true)
	eventually(t, "LMB pressed", func() bool { return contains(tr.Snapshot(), "LMB") })
	if p.State() != Running {
		t.Errorf("Expected running, got %s", p.State())
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if p.State() != Stopped {
		t.Errorf("Expected stopped, got %s", p.State())
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// TestParseKind tests strategy name validation
func TestParseKind(t *testing.T) {
	if k, err := ParseKind("Polling"); err != nil || k != KindPolling {
		t.Errorf("Expected polling, got %q (%v)", k, err)
	}
	if k, err := ParseKind("auto"); err != nil || k != Default() {
		t.Errorf("Expected default, got %q (%v)", k, err)
	}
	if _, err := ParseKind("interrupt"); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}

// TestNewRequiresTracker tests constructor validation
func TestNewRequiresTracker(t *testing.T) {
	if _, err := New(KindPolling, Options{}); err == nil {
		t.Error("Expected error without tracker")
	}
}

// TestUiohookEvent tests mapping of gohook event kinds
func TestUiohookEvent(t *testing.T) {
	ev, ok := uiohookEvent(uioKeyPressed, 0x001C, 0)
	if !ok || !ev.Down || ev.Key.Label != "ENTER" {
		t.Errorf("Expected ENTER press, got %+v (ok=%v)", ev, ok)
	}
	ev, ok = uiohookEvent(uioMouseReleased, 0, 2)
	if !ok || ev.Down || ev.Key.Label != "RMB" {
		t.Errorf("Expected RMB release, got %+v (ok=%v)", ev, ok)
	}
	if _, ok := uiohookEvent(3, 0x001E, 0); ok {
		t.Error("Expected key-typed events to be ignored")
	}
	if _, ok := uiohookEvent(uioMousePressed, 0, 0); ok {
		t.Error("Expected button 0 to be ignored")
	}
}

// TestTapEvents tests conversion of event-tap callbacks
func TestTapEvents(t *testing.T) {
	evs := tapEvents(cgKeyDown, 0x24, 0)
	if len(evs) != 1 || !evs[0].Down || evs[0].Key.Label != "ENTER" {
		t.Errorf("Expected ENTER press, got %+v", evs)
	}

	// Right shift down: device bit 0x4 plus the generic shift flag.
	evs = tapEvents(cgFlagsChanged, keys.MacRightShift, 0x20004)
	if len(evs) != 1 || !evs[0].Down || evs[0].Key.Label != "SHIFT" {
		t.Errorf("Expected SHIFT press, got %+v", evs)
	}
	// Left shift released while right shift is still down.
	evs = tapEvents(cgFlagsChanged, keys.MacShift, 0x20004)
	if len(evs) != 1 || evs[0].Down {
		t.Errorf("Expected left SHIFT release, got %+v", evs)
	}

	evs = tapEvents(cgFlagsChanged, keys.MacCapsLock, 0x10000)
	if len(evs) != 2 || !evs[0].Down || evs[1].Down {
		t.Errorf("Expected CAPS pulse, got %+v", evs)
	}

	evs = tapEvents(cgOtherMouseDown, 2, 0)
	if len(evs) != 1 || evs[0].Key.Label != "MMB" {
		t.Errorf("Expected MMB, got %+v", evs)
	}
	if evs := tapEvents(22, 0, 0); evs != nil {
		t.Errorf("Expected scroll events to be ignored, got %+v", evs)
	}
}

// TestPermissionCache tests that Check always re-probes
func TestPermissionCache(t *testing.T) {
	answer := false
	c := &permissionCache{probe: func() bool { return answer }}

	if _, checked := c.Cached(); checked {
		t.Error("Expected unchecked cache")
	}
	if c.Check() {
		t.Error("Expected denied")
	}
	answer = true
	if granted, _ := c.Cached(); granted {
		t.Error("Expected cached denial until re-check")
	}
	if !c.Check() {
		t.Error("Expected re-check to see the grant")
	}
}
