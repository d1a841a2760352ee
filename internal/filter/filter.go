// Package filter decides whether input should be tracked given the target
// window configuration and the current foreground window.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"keyoverlay/internal/window"
)

// Mode selects which foreground-window attribute the target value is
// compared against.
type Mode string

const (
	Disabled Mode = "disabled"
	All      Mode = "all"
	Title    Mode = "title"
	Process  Mode = "process"
	HWND     Mode = "hwnd"
	Class    Mode = "class"
)

// Modes lists every valid mode in display order.
var Modes = []Mode{Disabled, All, Title, Process, HWND, Class}

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown filter mode")

// ParseMode validates a mode name. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Modes {
		if m == valid {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Target is the configured target window. An empty Value counts as absent.
type Target struct {
	Mode  Mode   `toml:"mode" json:"mode"`
	Value string `toml:"value" json:"value"`
}

// NeedsWindow reports whether deciding this target requires a foreground
// window query.
func (t Target) NeedsWindow() bool {
	switch t.Mode {
	case Title, Process, HWND, Class:
		return t.Value != ""
	}
	return false
}

// Matches applies the target policy to one foreground-window answer.
func Matches(t Target, info window.Info, ok bool) bool {
	switch t.Mode {
	case All:
		return true
	case Disabled:
		return false
	}
	if !ok || t.Value == "" {
		return false
	}

	switch t.Mode {
	case Title:
		return strings.Contains(strings.ToLower(info.Title), strings.ToLower(t.Value))
	case Process:
		return strings.EqualFold(info.Process, t.Value)
	case HWND:
		return info.ID == t.Value
	case Class:
		return strings.EqualFold(info.Class, t.Value)
	}
	return false
}

// Admit queries the foreground window at most once and applies Matches.
func Admit(t Target, p window.Provider) bool {
	if !t.NeedsWindow() {
		return Matches(t, window.Info{}, false)
	}
	info, ok := p.Foreground()
	return Matches(t, info, ok)
}
