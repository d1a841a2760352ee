// Package tray provides system tray functionality using getlantern/systray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// MenuItem represents a menu item
type MenuItem struct {
	ID        int
	Title     string
	Tooltip   string
	Checkable bool
	Callback  func()

	checked bool
	item    *systray.MenuItem
}

// Tray manages the system tray icon and menu
type Tray struct {
	title   string
	tooltip string

	mu      sync.Mutex
	items   []*MenuItem
	onReady func()
	quitCh  chan struct{}
}

// New creates a new system tray
func New(title, tooltip string) *Tray {
	return &Tray{
		title:   title,
		tooltip: tooltip,
		quitCh:  make(chan struct{}),
	}
}

// OnReady sets a function run after the menu is built. On macOS the
// systray loop owns the main thread, so work that needs it goes here.
func (t *Tray) OnReady(fn func()) {
	t.onReady = fn
}

// AddMenuItem adds a menu item to the tray
func (t *Tray) AddMenuItem(title, tooltip string, callback func()) int {
	return t.add(&MenuItem{Title: title, Tooltip: tooltip, Callback: callback})
}

// AddCheckbox adds a checkable menu item with an initial state.
func (t *Tray) AddCheckbox(title, tooltip string, checked bool, callback func()) int {
	return t.add(&MenuItem{Title: title, Tooltip: tooltip, Checkable: true, checked: checked, Callback: callback})
}

func (t *Tray) add(mi *MenuItem) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi.ID = len(t.items)
	t.items = append(t.items, mi)
	return mi.ID
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.mu.Lock()
	t.items = append(t.items, nil) // nil indicates separator
	t.mu.Unlock()
}

// SetItemChecked sets the checked state of a menu item. It may be called
// before Run; the state is applied when the menu is built.
func (t *Tray) SetItemChecked(id int, checked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id < 0 || id >= len(t.items) || t.items[id] == nil {
		return
	}
	mi := t.items[id]
	mi.checked = checked
	if mi.item == nil {
		return
	}
	if checked {
		mi.item.Check()
	} else {
		mi.item.Uncheck()
	}
}

// Checked reports the last known checked state of a menu item.
func (t *Tray) Checked(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id < 0 || id >= len(t.items) || t.items[id] == nil {
		return false
	}
	return t.items[id].checked
}

// Run starts the tray event loop (blocks)
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() { close(t.quitCh) })
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	systray.SetTitle(t.title)
	systray.SetTooltip(t.tooltip)
	systray.SetIcon(getIcon())

	t.mu.Lock()
	for _, mi := range t.items {
		if mi == nil {
			systray.AddSeparator()
			continue
		}
		if mi.Checkable {
			mi.item = systray.AddMenuItemCheckbox(mi.Title, mi.Tooltip, mi.checked)
		} else {
			mi.item = systray.AddMenuItem(mi.Title, mi.Tooltip)
		}

		if mi.Callback != nil {
			go func(mi *MenuItem) {
				for {
					select {
					case <-mi.item.ClickedCh:
						mi.Callback()
					case <-t.quitCh:
						return
					}
				}
			}(mi)
		}
	}
	t.mu.Unlock()

	if t.onReady != nil {
		t.onReady()
	}
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}
