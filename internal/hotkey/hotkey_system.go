//go:build windows || (darwin && cgo)

package hotkey

import (
	"context"
	"fmt"

	"golang.design/x/hotkey"

	"keyoverlay/internal/tracker"
)

var keyMap = map[string]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
	"F13": hotkey.KeyF13, "F14": hotkey.KeyF14, "F15": hotkey.KeyF15, "F16": hotkey.KeyF16,
	"F17": hotkey.KeyF17, "F18": hotkey.KeyF18, "F19": hotkey.KeyF19, "F20": hotkey.KeyF20,
	"SPACE": hotkey.KeySpace, "ENTER": hotkey.KeyReturn, "ESC": hotkey.KeyEscape,
	"TAB": hotkey.KeyTab, "LEFT": hotkey.KeyLeft, "RIGHT": hotkey.KeyRight,
	"UP": hotkey.KeyUp, "DOWN": hotkey.KeyDown,
}

func systemHotkey(c Combo) (*hotkey.Hotkey, error) {
	mods := make([]hotkey.Modifier, 0, len(c.Mods))
	for _, name := range c.Mods {
		mod, ok := modMap[name]
		if !ok {
			return nil, fmt.Errorf("modifier %s not available on this platform", name)
		}
		mods = append(mods, mod)
	}
	key, ok := keyMap[c.Key]
	if !ok {
		return nil, fmt.Errorf("key %s not available on this platform", c.Key)
	}
	return hotkey.New(mods, key), nil
}

func (m *Manager) startPlatform(ctx context.Context, _ *tracker.Notifier) error {
	m.mu.Lock()
	bindings := append([]*binding(nil), m.bindings...)
	m.mu.Unlock()

	var registered []*hotkey.Hotkey
	for _, b := range bindings {
		hk, err := systemHotkey(b.combo)
		if err == nil {
			err = hk.Register()
		}
		if err != nil {
			for _, r := range registered {
				r.Unregister()
			}
			return fmt.Errorf("register %s: %w", b.combo, err)
		}
		registered = append(registered, hk)
		m.log.Info().Str("hotkey", b.combo.String()).Msg("Registered global hotkey")

		go func(b *binding, hk *hotkey.Hotkey) {
			for {
				select {
				case <-ctx.Done():
					return
				case <-hk.Keydown():
					m.trigger(b)
				}
			}
		}(b, hk)
	}

	go func() {
		<-ctx.Done()
		for _, hk := range registered {
			hk.Unregister()
		}
	}()
	return nil
}
