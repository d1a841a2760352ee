//go:build windows

package capture

var procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")

type asyncKeyState struct{}

func newKeyStateReader() (KeyStateReader, error) {
	if err := procGetAsyncKeyState.Find(); err != nil {
		return nil, err
	}
	return asyncKeyState{}, nil
}

// IsDown checks the most significant bit of GetAsyncKeyState.
func (asyncKeyState) IsDown(vk uint32) bool {
	ret, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return ret&0x8000 != 0
}
