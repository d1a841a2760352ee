package capture

import "keyoverlay/internal/keys"

// libuiohook event types, which gohook passes through unchanged as
// Event.Kind (gohook calls them KeyHold, KeyUp, MouseHold and MouseDown).
// Key-typed and mouse-clicked events duplicate these and are ignored.
const (
	uioKeyPressed    = 4
	uioKeyReleased   = 5
	uioMousePressed  = 7
	uioMouseReleased = 8
)

func uiohookEvent(kind uint8, keycode, button uint16) (Event, bool) {
	switch kind {
	case uioKeyPressed:
		return Event{Key: keys.Uiohook(keycode), Down: true}, true
	case uioKeyReleased:
		return Event{Key: keys.Uiohook(keycode), Down: false}, true
	case uioMousePressed:
		if button == 0 {
			return Event{}, false
		}
		return Event{Key: keys.MouseButton(int(button)), Down: true}, true
	case uioMouseReleased:
		if button == 0 {
			return Event{}, false
		}
		return Event{Key: keys.MouseButton(int(button)), Down: false}, true
	}
	return Event{}, false
}
