//go:build darwin && cgo

package hotkey

import "golang.design/x/hotkey"

var modMap = map[string]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModShift: hotkey.ModShift,
	ModAlt:   hotkey.ModOption,
	ModWin:   hotkey.ModCmd,
}
