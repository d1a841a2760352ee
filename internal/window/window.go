// Package window reports the foreground window and the list of visible
// top-level windows. Lookups may fail for many ordinary reasons (no focused
// window, missing permission, no display server); callers get ok == false
// or an empty list and never an error.
package window

import (
	"errors"
	"sync"
)

// Info describes one top-level window. ID is the platform handle rendered
// as a decimal string: the HWND on Windows, the X11 window id on Linux and
// the owning process id on macOS.
type Info struct {
	ID      string `json:"hwnd"`
	Title   string `json:"title"`
	Process string `json:"process"`
	Class   string `json:"class"`
}

// Provider is the window-introspection backend.
type Provider interface {
	// Foreground returns the window that currently has input focus.
	Foreground() (Info, bool)
	// List returns visible top-level windows that have a title.
	List() []Info
}

// Focuser is implemented by providers that can raise a window.
type Focuser interface {
	Focus(id string) error
}

// ErrFocusUnsupported is returned by Focus when the provider cannot raise
// windows.
var ErrFocusUnsupported = errors.New("window: focus not supported on this platform")

// Focus restores and raises the window with the given ID, if p supports it.
func Focus(p Provider, id string) error {
	f, ok := p.(Focuser)
	if !ok {
		return ErrFocusUnsupported
	}
	return f.Focus(id)
}

// New returns the provider for the running platform.
func New() Provider {
	return newSystem()
}

// Static is a Provider with a fixed answer, for tests and headless runs.
type Static struct {
	mu      sync.Mutex
	info    Info
	ok      bool
	windows []Info
	calls   int
	focused []string
}

// NewStatic returns a Static provider reporting info as the foreground window.
func NewStatic(info Info, ok bool) *Static {
	return &Static{info: info, ok: ok}
}

// Set replaces the foreground answer.
func (s *Static) Set(info Info, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
	s.ok = ok
}

// SetList replaces the window list.
func (s *Static) SetList(windows []Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append([]Info(nil), windows...)
}

// Foreground implements Provider.
func (s *Static) Foreground() (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.info, s.ok
}

// List implements Provider.
func (s *Static) List() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Info(nil), s.windows...)
}

// Calls returns how many times Foreground has been queried.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Focus implements Focuser by recording id.
func (s *Static) Focus(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focused = append(s.focused, id)
	return nil
}

// Focused returns every id passed to Focus, in order.
func (s *Static) Focused() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.focused...)
}
