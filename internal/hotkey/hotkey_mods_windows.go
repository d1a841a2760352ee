package hotkey

import "golang.design/x/hotkey"

var modMap = map[string]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModShift: hotkey.ModShift,
	ModAlt:   hotkey.ModAlt,
	ModWin:   hotkey.ModWin,
}
