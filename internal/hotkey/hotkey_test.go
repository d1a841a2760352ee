package hotkey

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// TestParse tests combo parsing and aliases
func TestParse(t *testing.T) {
	cases := map[string]string{
		"Ctrl+Shift+F12":   "CTRL+SHIFT+F12",
		"control + alt+r":  "CTRL+ALT+R",
		"cmd+option+Space": "WIN+ALT+SPACE",
		"Meta+Escape":      "WIN+ESC",
		"F5":               "F5",
		"shift+return":     "SHIFT+ENTER",
	}
	for in, want := range cases {
		c, err := Parse(in)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", in, err)
			continue
		}
		if c.String() != want {
			t.Errorf("Parse(%q): expected %s, got %s", in, want, c)
		}
	}
}

// TestParseRejects tests malformed combos
func TestParseRejects(t *testing.T) {
	for _, in := range []string{"", "Ctrl+", "A+Ctrl", "Ctrl+F25", "Ctrl+Shift", "Ctrl+PrintScreen", "Ctrl++A"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Expected Parse(%q) to fail", in)
		}
	}
}

func collect(m *Manager, combo string) chan struct{} {
	fired := make(chan struct{}, 10)
	if err := m.Register(combo, func() { fired <- struct{}{} }); err != nil {
		panic(err)
	}
	return fired
}

func expectFires(t *testing.T, fired chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatalf("Expected %d fires, got %d", n, i)
		}
	}
	select {
	case <-fired:
		t.Fatalf("Expected exactly %d fires", n)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestObserveIsEdgeTriggered tests that a held combo fires once per hold
func TestObserveIsEdgeTriggered(t *testing.T) {
	m := NewManager(zerolog.Nop())
	fired := collect(m, "Ctrl+Shift+R")

	m.Observe([]string{"CTRL"})
	m.Observe([]string{"CTRL", "SHIFT"})
	m.Observe([]string{"CTRL", "SHIFT", "R"})
	m.Observe([]string{"CTRL", "SHIFT", "R", "A"})
	expectFires(t, fired, 1)

	m.Observe([]string{"CTRL", "SHIFT"})
	m.Observe([]string{"CTRL", "SHIFT", "R"})
	expectFires(t, fired, 1)
}

// TestUpdateState tests incremental key state matching
func TestUpdateState(t *testing.T) {
	m := NewManager(zerolog.Nop())
	fired := collect(m, "alt+f4")

	m.UpdateState("f4", true)
	m.UpdateState("alt", true)
	expectFires(t, fired, 1)

	m.UpdateState("F4", false)
	m.UpdateState("F4", true)
	expectFires(t, fired, 1)
}

// TestRegisterEmpty tests that an unset hotkey is ignored
func TestRegisterEmpty(t *testing.T) {
	m := NewManager(zerolog.Nop())
	if err := m.Register("  ", func() {}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(m.Combos()) != 0 {
		t.Error("Expected no bindings")
	}
	if err := m.Register("Ctrl+Nope", func() {}); err == nil {
		t.Error("Expected error for unknown key")
	}
}
