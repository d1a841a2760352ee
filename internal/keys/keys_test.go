package keys

import "testing"

// TestLabelsAgreeAcrossTables checks that equivalent keys get the same label
// from every backend table
func TestLabelsAgreeAcrossTables(t *testing.T) {
	cases := []struct {
		name  string
		want  string
		vk    uint32
		uio   uint16
		mac   uint16
		evdev string
	}{
		{"enter", "ENTER", 0x0D, 0x001C, 0x24, "KEY_ENTER"},
		{"left shift", "SHIFT", VKLShift, 0x002A, MacShift, "KEY_LEFTSHIFT"},
		{"right shift", "SHIFT", VKRShift, 0x0036, MacRightShift, "KEY_RIGHTSHIFT"},
		{"left ctrl", "CTRL", VKLControl, 0x001D, MacControl, "KEY_LEFTCTRL"},
		{"left alt", "ALT", VKLMenu, 0x0038, MacOption, "KEY_LEFTALT"},
		{"right alt", "ALT GR", VKRMenu, 0x0E38, MacRightOption, "KEY_RIGHTALT"},
		{"meta", "WIN", 0x5B, 0x0E5B, MacCommand, "KEY_LEFTMETA"},
		{"letter", "A", 'A', 0x001E, 0x00, "KEY_A"},
		{"digit", "1", '1', 0x0002, 0x12, "KEY_1"},
		{"f5", "F5", 0x74, 0x003F, 0x60, "KEY_F5"},
		{"escape", "ESC", 0x1B, 0x0001, 0x35, "KEY_ESC"},
		{"backspace", "BKSP", 0x08, 0x000E, 0x33, "KEY_BACKSPACE"},
		{"space", "SPACE", 0x20, 0x0039, 0x31, "KEY_SPACE"},
		{"tab", "TAB", 0x09, 0x000F, 0x30, "KEY_TAB"},
		{"up", "UP", 0x26, 0xE048, 0x7E, "KEY_UP"},
		{"page down", "PG DN", 0x22, 0x0E51, 0x79, "KEY_PAGEDOWN"},
		{"delete", "DEL", 0x2E, 0x0E53, 0x75, "KEY_DELETE"},
		{"slash", "/", 0xBF, 0x0035, 0x2C, "KEY_SLASH"},
		{"numpad slash", "/", 0x6F, 0x0E35, 0x4B, "KEY_KPSLASH"},
		{"numpad 7", "7", 0x67, 0x0047, 0x59, "KEY_KP7"},
		{"grave", "`", 0xC0, 0x0029, 0x32, "KEY_GRAVE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := VirtualKey(tc.vk, false).Label; got != tc.want {
				t.Errorf("VirtualKey: expected %q, got %q", tc.want, got)
			}
			if got := Uiohook(tc.uio).Label; got != tc.want {
				t.Errorf("Uiohook: expected %q, got %q", tc.want, got)
			}
			if got := Mac(tc.mac).Label; got != tc.want {
				t.Errorf("Mac: expected %q, got %q", tc.want, got)
			}
			if got := Evdev(0, tc.evdev).Label; got != tc.want {
				t.Errorf("Evdev: expected %q, got %q", tc.want, got)
			}
		})
	}
}

// TestNumpadEnterIsDistinct tests that the numpad Enter key shares the label
// but not the code of the main Enter key
func TestNumpadEnterIsDistinct(t *testing.T) {
	main := VirtualKey(VKReturn, false)
	pad := VirtualKey(VKReturn, true)
	if main.Label != pad.Label {
		t.Errorf("Expected same label, got %q and %q", main.Label, pad.Label)
	}
	if main.Code == pad.Code {
		t.Errorf("Expected distinct codes, both are 0x%X", main.Code)
	}

	if Uiohook(0x001C).Code == Uiohook(0x0E1C).Code {
		t.Error("Expected distinct uiohook codes for the two Enter keys")
	}
}

// TestFallbackLabels tests the derived labels for unknown keys
func TestFallbackLabels(t *testing.T) {
	if got := VirtualKey(0x7C+0x30, false).Label; got != "VK_AC" {
		t.Errorf("Expected VK_AC, got %q", got)
	}
	if got := Uiohook(0x0E99).Label; got != "VC_0E99" {
		t.Errorf("Expected VC_0E99, got %q", got)
	}
	if got := Mac(0x6E).Label; got != "KC_6E" {
		t.Errorf("Expected KC_6E, got %q", got)
	}
	if got := Evdev(183, "KEY_F13").Label; got != "F13" {
		t.Errorf("Expected F13, got %q", got)
	}
	if got := Evdev(0x2FF, "").Label; got != "EV_2FF" {
		t.Errorf("Expected EV_2FF, got %q", got)
	}
}

// TestMouseButtons tests the shared mouse labels and code range
func TestMouseButtons(t *testing.T) {
	want := []string{"LMB", "RMB", "MMB", "MB4", "MB5"}
	for i, label := range want {
		k := MouseButton(i + 1)
		if k.Label != label {
			t.Errorf("Expected %q for button %d, got %q", label, i+1, k.Label)
		}
		if !IsMouse(k.Code) {
			t.Errorf("Expected 0x%X to be a mouse code", k.Code)
		}
	}

	if got := Evdev(BtnRight, "BTN_RIGHT"); got != MouseButton(2) {
		t.Errorf("Expected evdev BTN_RIGHT to map to RMB, got %+v", got)
	}
	if IsMouse(Uiohook(0x001E).Code) {
		t.Error("Expected keyboard code not to be a mouse code")
	}
}

// TestNumpadDecimal tests that numpad decimal shows "." in every table
func TestNumpadDecimal(t *testing.T) {
	for name, k := range map[string]Key{
		"vk":      VirtualKey(0x6E, false),
		"uiohook": Uiohook(0x0053),
		"mac":     Mac(0x41),
		"evdev":   Evdev(83, "KEY_KPDOT"),
	} {
		if k.Label != "." {
			t.Errorf("Expected '.' from %s, got %q", name, k.Label)
		}
	}
}

// TestOnDevice tests per-device codes for the same key
func TestOnDevice(t *testing.T) {
	shift := Evdev(42, "KEY_LEFTSHIFT")

	if got := OnDevice(shift, 0); got != shift {
		t.Errorf("Expected device 0 to keep %+v, got %+v", shift, got)
	}
	a, b := OnDevice(shift, 1), OnDevice(shift, 2)
	if a.Code == shift.Code || a.Code == b.Code {
		t.Errorf("Expected distinct codes, got 0x%X, 0x%X and 0x%X", shift.Code, a.Code, b.Code)
	}
	if a.Label != shift.Label || b.Label != shift.Label {
		t.Errorf("Expected label %q, got %q and %q", shift.Label, a.Label, b.Label)
	}
	if IsMouse(a.Code) {
		t.Error("Expected a tagged key code not to be a mouse code")
	}

	lmb := OnDevice(MouseButton(1), 3)
	if !IsMouse(lmb.Code) || lmb.Label != "LMB" {
		t.Errorf("Expected a tagged LMB mouse code, got %+v", lmb)
	}
	if lmb.Code == MouseButton(1).Code {
		t.Error("Expected the tagged mouse code to differ")
	}
	if OnDevice(shift, deviceSlots) != shift {
		t.Error("Expected device indexes to wrap around")
	}
}

// TestMonitoredKeys tests that every polled key has a real label and that
// the set has no duplicates
func TestMonitoredKeys(t *testing.T) {
	seen := make(map[uint32]bool)
	for _, vk := range MonitoredKeys {
		if seen[vk] {
			t.Errorf("Duplicate monitored key 0x%X", vk)
		}
		seen[vk] = true
		if _, ok := vkLabels[vk]; !ok {
			t.Errorf("Monitored key 0x%X has no label", vk)
		}
	}
	for _, vk := range []uint32{VKShift, VKControl, VKMenu} {
		if seen[vk] {
			t.Errorf("Generic modifier 0x%X should not be monitored", vk)
		}
	}
}
