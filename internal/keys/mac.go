package keys

// macOS virtual keycodes (kVK_* from HIToolbox/Events.h).
const (
	MacCommand      = 0x37
	MacRightCommand = 0x36
	MacShift        = 0x38
	MacRightShift   = 0x3C
	MacOption       = 0x3A
	MacRightOption  = 0x3D
	MacControl      = 0x3B
	MacRightControl = 0x3E
	MacCapsLock     = 0x39
	MacFunction     = 0x3F
)

var macLabels = map[uint16]string{
	0x00: "A",
	0x0B: "B",
	0x08: "C",
	0x02: "D",
	0x0E: "E",
	0x03: "F",
	0x05: "G",
	0x04: "H",
	0x22: "I",
	0x26: "J",
	0x28: "K",
	0x25: "L",
	0x2E: "M",
	0x2D: "N",
	0x1F: "O",
	0x23: "P",
	0x0C: "Q",
	0x0F: "R",
	0x01: "S",
	0x11: "T",
	0x20: "U",
	0x09: "V",
	0x0D: "W",
	0x07: "X",
	0x10: "Y",
	0x06: "Z",

	0x1D: "0",
	0x12: "1",
	0x13: "2",
	0x14: "3",
	0x15: "4",
	0x17: "5",
	0x16: "6",
	0x1A: "7",
	0x1C: "8",
	0x19: "9",

	0x18: "=",
	0x1B: "-",
	0x1E: "]",
	0x21: "[",
	0x27: "'",
	0x29: ";",
	0x2A: "\\",
	0x2B: ",",
	0x2C: "/",
	0x2F: ".",
	0x32: "`",
	0x0A: "\\",

	0x24: "ENTER",
	0x30: "TAB",
	0x31: "SPACE",
	0x33: "BKSP",
	0x35: "ESC",
	0x75: "DEL",
	0x72: "INS",
	0x73: "HOME",
	0x77: "END",
	0x74: "PG UP",
	0x79: "PG DN",
	0x7B: "LEFT",
	0x7C: "RIGHT",
	0x7D: "DOWN",
	0x7E: "UP",

	MacCommand:      "WIN",
	MacRightCommand: "WIN",
	MacShift:        "SHIFT",
	MacRightShift:   "SHIFT",
	MacOption:       "ALT",
	MacRightOption:  "ALT GR",
	MacControl:      "CTRL",
	MacRightControl: "CTRL",
	MacCapsLock:     "CAPS",
	MacFunction:     "FN",

	0x7A: "F1",
	0x78: "F2",
	0x63: "F3",
	0x76: "F4",
	0x60: "F5",
	0x61: "F6",
	0x62: "F7",
	0x64: "F8",
	0x65: "F9",
	0x6D: "F10",
	0x67: "F11",
	0x6F: "F12",
	0x69: "F13",
	0x6B: "F14",
	0x71: "F15",
	0x6A: "F16",
	0x40: "F17",
	0x4F: "F18",
	0x50: "F19",
	0x5A: "F20",

	0x41: ".",
	0x43: "*",
	0x45: "+",
	0x47: "NUM",
	0x4B: "/",
	0x4C: "ENTER",
	0x4E: "-",
	0x51: "=",
	0x52: "0",
	0x53: "1",
	0x54: "2",
	0x55: "3",
	0x56: "4",
	0x57: "5",
	0x58: "6",
	0x59: "7",
	0x5B: "8",
	0x5C: "9",

	0x48: "VOL+",
	0x49: "VOL-",
	0x4A: "MUTE",
}

// Mac resolves a macOS virtual keycode.
func Mac(keycode uint16) Key {
	label, ok := macLabels[keycode]
	if !ok {
		label = fallback("KC", 2, uint32(keycode))
	}
	return Key{Code: uint32(keycode), Label: label}
}
