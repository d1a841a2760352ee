package keys

// MonitoredKeys is the fixed set of Windows virtual keys the polling
// backend samples on every tick. Keys outside this set are never reported
// by polling; the hook backends do not have this limitation.
//
// The generic VK_SHIFT, VK_CONTROL and VK_MENU codes are left out because
// their left/right variants already cover them.
var MonitoredKeys = monitoredKeys()

func monitoredKeys() []uint32 {
	set := []uint32{
		VKLButton, VKRButton, VKMButton, VKXButton1, VKXButton2,
		0x08, 0x09, VKReturn, 0x13, 0x14, 0x15, 0x19, 0x1B,
		0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28,
		0x2C, 0x2D, 0x2E,
		0x5B, 0x5C, 0x5D,
		0x90, 0x91,
		VKLShift, VKRShift, VKLControl, VKRControl, VKLMenu, VKRMenu,
		0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF, 0xC0,
		0xDB, 0xDC, 0xDD, 0xDE, 0xE2,
	}
	for vk := uint32('0'); vk <= '9'; vk++ {
		set = append(set, vk)
	}
	for vk := uint32('A'); vk <= 'Z'; vk++ {
		set = append(set, vk)
	}
	// numpad 0-9 * + separator - . /
	for vk := uint32(0x60); vk <= 0x6F; vk++ {
		set = append(set, vk)
	}
	// F1-F24
	for vk := uint32(0x70); vk <= 0x87; vk++ {
		set = append(set, vk)
	}
	return set
}
