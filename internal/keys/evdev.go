package keys

import "strings"

// Linux input button codes for the mouse (linux/input-event-codes.h).
const (
	BtnLeft   = 0x110
	BtnRight  = 0x111
	BtnMiddle = 0x112
	BtnSide   = 0x113
	BtnExtra  = 0x114
)

var evdevButtons = map[uint16]int{
	BtnLeft:   1,
	BtnRight:  2,
	BtnMiddle: 3,
	BtnSide:   4,
	BtnExtra:  5,
}

// evdevLabels only lists names whose label is not the name minus "KEY_".
var evdevLabels = map[string]string{
	"KEY_ESC":        "ESC",
	"KEY_MINUS":      "-",
	"KEY_EQUAL":      "=",
	"KEY_BACKSPACE":  "BKSP",
	"KEY_LEFTBRACE":  "[",
	"KEY_RIGHTBRACE": "]",
	"KEY_SEMICOLON":  ";",
	"KEY_APOSTROPHE": "'",
	"KEY_GRAVE":      "`",
	"KEY_BACKSLASH":  "\\",
	"KEY_102ND":      "\\",
	"KEY_COMMA":      ",",
	"KEY_DOT":        ".",
	"KEY_SLASH":      "/",
	"KEY_CAPSLOCK":   "CAPS",
	"KEY_NUMLOCK":    "NUM",
	"KEY_SCROLLLOCK": "SCROLL",
	"KEY_SYSRQ":      "PRINT",
	"KEY_PAGEUP":     "PG UP",
	"KEY_PAGEDOWN":   "PG DN",
	"KEY_INSERT":     "INS",
	"KEY_DELETE":     "DEL",
	"KEY_COMPOSE":    "MENU",
	"KEY_VOLUMEUP":   "VOL+",
	"KEY_VOLUMEDOWN": "VOL-",
	"KEY_HANGEUL":    "HANGUL",

	"KEY_LEFTSHIFT":  "SHIFT",
	"KEY_RIGHTSHIFT": "SHIFT",
	"KEY_LEFTCTRL":   "CTRL",
	"KEY_RIGHTCTRL":  "CTRL",
	"KEY_LEFTALT":    "ALT",
	"KEY_RIGHTALT":   "ALT GR",
	"KEY_LEFTMETA":   "WIN",
	"KEY_RIGHTMETA":  "WIN",

	"KEY_KP0":        "0",
	"KEY_KP1":        "1",
	"KEY_KP2":        "2",
	"KEY_KP3":        "3",
	"KEY_KP4":        "4",
	"KEY_KP5":        "5",
	"KEY_KP6":        "6",
	"KEY_KP7":        "7",
	"KEY_KP8":        "8",
	"KEY_KP9":        "9",
	"KEY_KPASTERISK": "*",
	"KEY_KPMINUS":    "-",
	"KEY_KPPLUS":     "+",
	"KEY_KPDOT":      ".",
	"KEY_KPSLASH":    "/",
	"KEY_KPENTER":    "ENTER",
	"KEY_KPEQUAL":    "=",
	"KEY_KPCOMMA":    ",",
}

// Evdev resolves a Linux EV_KEY code. name is the symbolic code name
// reported by the input layer ("KEY_A", "BTN_LEFT"); when the kernel
// headers know several aliases for one code the caller may pass any of
// them.
func Evdev(code uint16, name string) Key {
	if n, ok := evdevButtons[code]; ok {
		return MouseButton(n)
	}
	if label, ok := evdevLabels[name]; ok {
		return Key{Code: uint32(code), Label: label}
	}
	label := strings.TrimPrefix(name, "KEY_")
	if label == "" {
		label = fallback("EV", 3, uint32(code))
	}
	return Key{Code: uint32(code), Label: strings.ToUpper(label)}
}
