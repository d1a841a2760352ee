// Package keys maps platform-native key and button identifiers to display
// labels and stable numeric codes.
//
// Each capture backend sees a different native encoding, so there is one
// table per encoding: Windows virtual keys, libuiohook keycodes, macOS
// virtual keycodes and Linux evdev codes. Codes are only unique within one
// table; labels agree across tables for equivalent keys. Several physical
// keys intentionally share a label (both Shift keys, numpad Enter and the
// main Enter, ...).
package keys

import (
	"fmt"
	"strings"
)

// Key is a resolved physical key: a code unique within one capture
// backend and the label shown on the overlay.
type Key struct {
	Code  uint32
	Label string
}

// mouseBase keeps mouse button codes clear of every keyboard table.
const mouseBase = 0x10000

var mouseLabels = map[int]string{
	1: "LMB",
	2: "RMB",
	3: "MMB",
	4: "MB4",
	5: "MB5",
}

// MouseButton resolves a 1-based mouse button number (1 left, 2 right,
// 3 middle, 4 and 5 side buttons).
func MouseButton(n int) Key {
	label, ok := mouseLabels[n]
	if !ok {
		label = fmt.Sprintf("MB%d", n)
	}
	return Key{Code: mouseBase | uint32(n), Label: label}
}

// IsMouse reports whether code was produced by MouseButton.
func IsMouse(code uint32) bool {
	return code&mouseBase != 0 && code < mouseBase<<1
}

// Device slots sit above every evdev code (KEY_MAX is 0x2ff) and below
// mouseBase.
const (
	deviceShift = 10
	deviceSlots = mouseBase >> deviceShift
)

// OnDevice gives k a code private to one input device, so a key held on
// two keyboards is tracked once per keyboard under the same label. Device
// 0 keeps the plain code; indexes past the last slot wrap around.
func OnDevice(k Key, device int) Key {
	slot := uint32(device % deviceSlots)
	k.Code |= slot << deviceShift
	return k
}

func fallback(prefix string, width int, code uint32) string {
	return strings.ToUpper(fmt.Sprintf("%s_%0*X", prefix, width, code))
}
