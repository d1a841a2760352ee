package capture

import "keyoverlay/internal/keys"

// CGEventType values delivered to the tap.
const (
	cgLeftMouseDown  = 1
	cgLeftMouseUp    = 2
	cgRightMouseDown = 3
	cgRightMouseUp   = 4
	cgKeyDown        = 10
	cgKeyUp          = 11
	cgFlagsChanged   = 12
	cgOtherMouseDown = 25
	cgOtherMouseUp   = 26
)

// flagsChanged carries no up/down bit, so each modifier is looked up in
// the device-dependent flag bits (NX_DEVICE*KEYMASK) to tell left from
// right.
var macModifierMasks = map[uint16]uint64{
	keys.MacControl:      0x00000001,
	keys.MacShift:        0x00000002,
	keys.MacRightShift:   0x00000004,
	keys.MacCommand:      0x00000008,
	keys.MacRightCommand: 0x00000010,
	keys.MacOption:       0x00000020,
	keys.MacRightOption:  0x00000040,
	keys.MacRightControl: 0x00002000,
	keys.MacFunction:     0x00800000,
}

// tapEvents converts one tap callback into tracker events. code is the
// keycode for keyboard events and the button number for mouse events.
func tapEvents(typ int, code int64, flags uint64) []Event {
	switch typ {
	case cgKeyDown:
		return []Event{{Key: keys.Mac(uint16(code)), Down: true}}
	case cgKeyUp:
		return []Event{{Key: keys.Mac(uint16(code)), Down: false}}
	case cgFlagsChanged:
		kc := uint16(code)
		if kc == keys.MacCapsLock {
			// Caps Lock reports the lock state rather than the key, so it is
			// shown as a momentary press.
			k := keys.Mac(kc)
			return []Event{{Key: k, Down: true}, {Key: k, Down: false}}
		}
		mask, ok := macModifierMasks[kc]
		if !ok {
			return nil
		}
		return []Event{{Key: keys.Mac(kc), Down: flags&mask != 0}}
	case cgLeftMouseDown, cgRightMouseDown, cgOtherMouseDown:
		return []Event{{Key: keys.MouseButton(int(code) + 1), Down: true}}
	case cgLeftMouseUp, cgRightMouseUp, cgOtherMouseUp:
		return []Event{{Key: keys.MouseButton(int(code) + 1), Down: false}}
	}
	return nil
}
