// Package hotkey provides the global shortcuts of the overlay, such as the
// one that clears every held key.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"keyoverlay/internal/tracker"
)

// ErrUnsupported is returned by Start when no backend exists for this build.
var ErrUnsupported = errors.New("hotkey: global shortcuts not supported on this platform")

// Modifier names as they appear in a parsed combo. They are also the labels
// the tracker uses for those keys.
const (
	ModCtrl  = "CTRL"
	ModShift = "SHIFT"
	ModAlt   = "ALT"
	ModWin   = "WIN"
)

var modAliases = map[string]string{
	"CTRL":    ModCtrl,
	"CONTROL": ModCtrl,
	"SHIFT":   ModShift,
	"ALT":     ModAlt,
	"OPTION":  ModAlt,
	"WIN":     ModWin,
	"CMD":     ModWin,
	"SUPER":   ModWin,
	"META":    ModWin,
}

var keyAliases = map[string]string{
	"RETURN": "ENTER",
	"ESCAPE": "ESC",
}

// Combo is a parsed shortcut such as "Ctrl+Shift+F12".
type Combo struct {
	Mods []string
	Key  string
}

// String renders the combo in its canonical form.
func (c Combo) String() string {
	return strings.Join(append(append([]string(nil), c.Mods...), c.Key), "+")
}

func (c Combo) parts() []string {
	return append(append([]string(nil), c.Mods...), c.Key)
}

// Parse reads a combo of zero or more modifiers followed by exactly one key.
// Names are case-insensitive.
func Parse(s string) (Combo, error) {
	fields := strings.Split(strings.ToUpper(s), "+")
	var c Combo
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return Combo{}, fmt.Errorf("invalid hotkey %q: empty part", s)
		}
		last := i == len(fields)-1
		if mod, ok := modAliases[f]; ok && !last {
			c.Mods = append(c.Mods, mod)
			continue
		}
		if !last {
			return Combo{}, fmt.Errorf("invalid hotkey %q: %q is not a modifier", s, f)
		}
		if alias, ok := keyAliases[f]; ok {
			f = alias
		}
		if !validKey(f) {
			return Combo{}, fmt.Errorf("invalid hotkey %q: unknown key %q", s, f)
		}
		c.Key = f
	}
	return c, nil
}

func validKey(k string) bool {
	if len(k) == 1 && (k[0] >= 'A' && k[0] <= 'Z' || k[0] >= '0' && k[0] <= '9') {
		return true
	}
	var n int
	if _, err := fmt.Sscanf(k, "F%d", &n); err == nil && fmt.Sprintf("F%d", n) == k {
		return n >= 1 && n <= 20
	}
	switch k {
	case "SPACE", "ENTER", "ESC", "TAB", "LEFT", "RIGHT", "UP", "DOWN":
		return true
	}
	return false
}

// Manager handles global hotkey registration and matching
type Manager struct {
	log zerolog.Logger

	mu           sync.Mutex
	bindings     []*binding
	currentState map[string]bool
}

type binding struct {
	combo    Combo
	callback func()
	active   bool
}

// NewManager creates a new hotkey manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:          log,
		currentState: make(map[string]bool),
	}
}

// Register parses combo and binds callback to it. An empty combo is a no-op.
func (m *Manager) Register(combo string, callback func()) error {
	if strings.TrimSpace(combo) == "" {
		return nil
	}
	c, err := Parse(combo)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings = append(m.bindings, &binding{combo: c, callback: callback})
	return nil
}

// Combos returns every registered combo.
func (m *Manager) Combos() []Combo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Combo, len(m.bindings))
	for i, b := range m.bindings {
		out[i] = b.combo
	}
	return out
}

// UpdateState records one key label going down or up and fires bindings
// that just became fully held.
func (m *Manager) UpdateState(label string, isDown bool) {
	m.mu.Lock()
	label = strings.ToUpper(label)
	if isDown {
		m.currentState[label] = true
	} else {
		delete(m.currentState, label)
	}
	fire := m.checkMatchesLocked()
	m.mu.Unlock()

	m.run(fire)
}

// Observe replaces the held set with labels and fires bindings that just
// became fully held.
func (m *Manager) Observe(labels []string) {
	m.mu.Lock()
	clear(m.currentState)
	for _, l := range labels {
		m.currentState[strings.ToUpper(l)] = true
	}
	fire := m.checkMatchesLocked()
	m.mu.Unlock()

	m.run(fire)
}

// checkMatchesLocked is edge-triggered: a binding fires once per hold.
func (m *Manager) checkMatchesLocked() []*binding {
	var fire []*binding
	for _, b := range m.bindings {
		match := true
		for _, part := range b.combo.parts() {
			if !m.currentState[part] {
				match = false
				break
			}
		}
		if match && !b.active {
			fire = append(fire, b)
		}
		b.active = match
	}
	return fire
}

func (m *Manager) trigger(b *binding) {
	m.log.Info().Str("hotkey", b.combo.String()).Msg("Hotkey triggered")
	go b.callback()
}

func (m *Manager) run(fire []*binding) {
	for _, b := range fire {
		m.trigger(b)
	}
}

// Start activates the registered bindings until ctx is done. Where the OS
// offers global shortcuts they are used directly; otherwise combos are
// matched against the held-key list published by held.
func (m *Manager) Start(ctx context.Context, held *tracker.Notifier) error {
	m.mu.Lock()
	n := len(m.bindings)
	m.mu.Unlock()
	if n == 0 {
		return nil
	}
	return m.startPlatform(ctx, held)
}

// watchHeld feeds the notifier's key list into Observe.
func (m *Manager) watchHeld(ctx context.Context, held *tracker.Notifier) {
	sub := held.Subscribe()
	defer sub.Close()
	m.Observe(sub.Latest())
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.C():
			m.Observe(sub.Latest())
		}
	}
}
