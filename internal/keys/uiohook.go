package keys

// libuiohook virtual keycodes as delivered by github.com/robotn/gohook in
// Event.Keycode. They are set-1 scancodes with 0x0E00/0xE000 prefixes for
// extended keys.
var uiohookLabels = map[uint16]string{
	0x0001: "ESC",
	0x003B: "F1",
	0x003C: "F2",
	0x003D: "F3",
	0x003E: "F4",
	0x003F: "F5",
	0x0040: "F6",
	0x0041: "F7",
	0x0042: "F8",
	0x0043: "F9",
	0x0044: "F10",
	0x0057: "F11",
	0x0058: "F12",
	0x005B: "F13",
	0x005C: "F14",
	0x005D: "F15",
	0x0063: "F16",
	0x0064: "F17",
	0x0065: "F18",
	0x0066: "F19",
	0x0067: "F20",
	0x0068: "F21",
	0x0069: "F22",
	0x006A: "F23",
	0x006B: "F24",

	0x0029: "`",
	0x0002: "1",
	0x0003: "2",
	0x0004: "3",
	0x0005: "4",
	0x0006: "5",
	0x0007: "6",
	0x0008: "7",
	0x0009: "8",
	0x000A: "9",
	0x000B: "0",
	0x000C: "-",
	0x000D: "=",
	0x000E: "BKSP",

	0x000F: "TAB",
	0x003A: "CAPS",

	0x001E: "A",
	0x0030: "B",
	0x002E: "C",
	0x0020: "D",
	0x0012: "E",
	0x0021: "F",
	0x0022: "G",
	0x0023: "H",
	0x0017: "I",
	0x0024: "J",
	0x0025: "K",
	0x0026: "L",
	0x0032: "M",
	0x0031: "N",
	0x0018: "O",
	0x0019: "P",
	0x0010: "Q",
	0x0013: "R",
	0x001F: "S",
	0x0014: "T",
	0x0016: "U",
	0x002F: "V",
	0x0011: "W",
	0x002D: "X",
	0x0015: "Y",
	0x002C: "Z",

	0x001A: "[",
	0x001B: "]",
	0x002B: "\\",
	0x0027: ";",
	0x0028: "'",
	0x001C: "ENTER",
	0x0033: ",",
	0x0034: ".",
	0x0035: "/",
	0x0039: "SPACE",

	0x0E37: "PRINT",
	0x0046: "SCROLL",
	0x0E45: "PAUSE",

	0x0E52: "INS",
	0x0E53: "DEL",
	0x0E47: "HOME",
	0x0E4F: "END",
	0x0E49: "PG UP",
	0x0E51: "PG DN",

	0xE048: "UP",
	0xE04B: "LEFT",
	0xE04C: "CLEAR",
	0xE04D: "RIGHT",
	0xE050: "DOWN",

	0x0045: "NUM",
	0x0E35: "/",
	0x0037: "*",
	0x004A: "-",
	0x0E0D: "=",
	0x004E: "+",
	0x0E1C: "ENTER",
	0x0053: ".",
	0x004F: "1",
	0x0050: "2",
	0x0051: "3",
	0x004B: "4",
	0x004C: "5",
	0x004D: "6",
	0x0047: "7",
	0x0048: "8",
	0x0049: "9",
	0x0052: "0",

	0x002A: "SHIFT",
	0x0036: "SHIFT",
	0x001D: "CTRL",
	0x0E1D: "CTRL",
	0x0038: "ALT",
	0x0E38: "ALT GR",
	0x0E5B: "WIN",
	0x0E5C: "WIN",
	0x0E5D: "MENU",

	0xE030: "VOL+",
	0xE02E: "VOL-",
	0xE020: "MUTE",
}

// Uiohook resolves a libuiohook keycode.
func Uiohook(keycode uint16) Key {
	label, ok := uiohookLabels[keycode]
	if !ok {
		label = fallback("VC", 4, uint32(keycode))
	}
	return Key{Code: uint32(keycode), Label: label}
}
