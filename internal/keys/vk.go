package keys

import "fmt"

// Windows virtual-key codes referenced outside the table.
const (
	VKLButton  = 0x01
	VKRButton  = 0x02
	VKMButton  = 0x04
	VKXButton1 = 0x05
	VKXButton2 = 0x06
	VKReturn   = 0x0D
	VKShift    = 0x10
	VKControl  = 0x11
	VKMenu     = 0x12
	VKLShift   = 0xA0
	VKRShift   = 0xA1
	VKLControl = 0xA2
	VKRControl = 0xA3
	VKLMenu    = 0xA4
	VKRMenu    = 0xA5
)

// vkExtended marks keys reported with the extended-key flag so that
// numpad Enter and main Enter stay distinct physical keys.
const vkExtended = 0x100

var vkLabels = map[uint32]string{
	VKLButton:  "LMB",
	VKRButton:  "RMB",
	VKMButton:  "MMB",
	VKXButton1: "MB4",
	VKXButton2: "MB5",

	0x08:       "BKSP",
	0x09:       "TAB",
	0x0C:       "CLEAR",
	VKReturn:   "ENTER",
	VKShift:    "SHIFT",
	VKControl:  "CTRL",
	VKMenu:     "ALT",
	0x13:       "PAUSE",
	0x14:       "CAPS",
	0x15:       "HANGUL",
	0x19:       "HANJA",
	0x1B:       "ESC",
	0x20:       "SPACE",
	0x21:       "PG UP",
	0x22:       "PG DN",
	0x23:       "END",
	0x24:       "HOME",
	0x25:       "LEFT",
	0x26:       "UP",
	0x27:       "RIGHT",
	0x28:       "DOWN",
	0x2C:       "PRINT",
	0x2D:       "INS",
	0x2E:       "DEL",
	0x5B:       "WIN",
	0x5C:       "WIN",
	0x5D:       "MENU",
	0x60:       "0",
	0x61:       "1",
	0x62:       "2",
	0x63:       "3",
	0x64:       "4",
	0x65:       "5",
	0x66:       "6",
	0x67:       "7",
	0x68:       "8",
	0x69:       "9",
	0x6A:       "*",
	0x6B:       "+",
	0x6C:       ",",
	0x6D:       "-",
	0x6E:       ".", // numpad decimal shows what it types, not DEL
	0x6F:       "/",
	0x90:       "NUM",
	0x91:       "SCROLL",
	VKLShift:   "SHIFT",
	VKRShift:   "SHIFT",
	VKLControl: "CTRL",
	VKRControl: "CTRL",
	VKLMenu:    "ALT",
	VKRMenu:    "ALT GR",
	0xAD:       "MUTE",
	0xAE:       "VOL-",
	0xAF:       "VOL+",
	0xB0:       "NEXT",
	0xB1:       "PREV",
	0xB2:       "STOP",
	0xB3:       "PLAY",
	0xBA:       ";",
	0xBB:       "=",
	0xBC:       ",",
	0xBD:       "-",
	0xBE:       ".",
	0xBF:       "/",
	0xC0:       "`",
	0xDB:       "[",
	0xDC:       "\\",
	0xDD:       "]",
	0xDE:       "'",
	0xE2:       "\\",
}

func init() {
	for vk := uint32('0'); vk <= '9'; vk++ {
		vkLabels[vk] = string(rune(vk))
	}
	for vk := uint32('A'); vk <= 'Z'; vk++ {
		vkLabels[vk] = string(rune(vk))
	}
	for i := uint32(0); i < 24; i++ {
		vkLabels[0x70+i] = fmt.Sprintf("F%d", i+1)
	}
}

// VirtualKey resolves a Windows virtual-key code. extended is the
// LLKHF_EXTENDED bit from a keyboard hook; the polling backend has no such
// information and always passes false.
func VirtualKey(vk uint32, extended bool) Key {
	code := vk
	if extended {
		code |= vkExtended
	}
	label, ok := vkLabels[vk]
	if !ok {
		label = fallback("VK", 2, vk)
	}
	return Key{Code: code, Label: label}
}
