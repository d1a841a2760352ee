//go:build windows

package capture

import (
	"context"
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"keyoverlay/internal/keys"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandle     = kernel32.NewProc("GetModuleHandleW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C

	llkhfExtended = 0x01
)

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msllHookStruct struct {
	Point       struct{ X, Y int32 }
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type winMsg struct {
	Hwnd    syscall.Handle
	Message uint32
	Wparam  uintptr
	Lparam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// Windows allows one low-level hook pair per thread and the callbacks
// carry no user data, so the active emitter lives at package level.
var (
	nativeMu      sync.Mutex
	nativeEmit    func(Event)
	keyboardHook  uintptr
	mouseHook     uintptr
	keyboardProcP = syscall.NewCallback(keyboardProc)
	mouseProcP    = syscall.NewCallback(mouseProc)
)

type nativeSource struct{}

func newNativeSource() (Source, error) { return nativeSource{}, nil }

func (nativeSource) Name() string { return SourceNative }

// Run installs WH_KEYBOARD_LL and WH_MOUSE_LL on the calling thread and
// pumps its message queue. The caller must hold the OS thread.
func (nativeSource) Run(ctx context.Context, emit func(Event), ready func()) error {
	nativeMu.Lock()
	if nativeEmit != nil {
		nativeMu.Unlock()
		return fmt.Errorf("native hook already installed")
	}
	nativeEmit = emit
	nativeMu.Unlock()
	defer func() {
		nativeMu.Lock()
		nativeEmit = nil
		nativeMu.Unlock()
	}()

	hMod, _, _ := procGetModuleHandle.Call(0)

	var err error
	keyboardHook, _, err = procSetWindowsHookEx.Call(whKeyboardLL, keyboardProcP, hMod, 0)
	if keyboardHook == 0 {
		return fmt.Errorf("set keyboard hook: %w", err)
	}
	defer procUnhookWindowsHookEx.Call(keyboardHook)

	mouseHook, _, err = procSetWindowsHookEx.Call(whMouseLL, mouseProcP, hMod, 0)
	if mouseHook == 0 {
		return fmt.Errorf("set mouse hook: %w", err)
	}
	defer procUnhookWindowsHookEx.Call(mouseHook)

	threadID := windows.GetCurrentThreadId()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			procPostThreadMessage.Call(uintptr(threadID), wmQuit, 0, 0)
		case <-stop:
		}
	}()

	ready()

	var msg winMsg
	for {
		ret, _, err := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			return fmt.Errorf("message loop: %w", err)
		case 0:
			return nil
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

func emitNative(ev Event) {
	nativeMu.Lock()
	emit := nativeEmit
	nativeMu.Unlock()
	if emit != nil {
		emit(ev)
	}
}

func keyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == 0 {
		kbd := (*kbdllHookStruct)(unsafe.Pointer(lParam))
		key := keys.VirtualKey(kbd.VkCode, kbd.Flags&llkhfExtended != 0)
		switch wParam {
		case wmKeyDown, wmSysKeyDown:
			emitNative(Event{Key: key, Down: true})
		case wmKeyUp, wmSysKeyUp:
			emitNative(Event{Key: key, Down: false})
		}
	}
	ret, _, _ := procCallNextHookEx.Call(keyboardHook, uintptr(nCode), wParam, lParam)
	return ret
}

func mouseProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == 0 {
		ms := (*msllHookStruct)(unsafe.Pointer(lParam))
		if button, down, ok := mouseButton(wParam, ms.MouseData); ok {
			emitNative(Event{Key: keys.MouseButton(button), Down: down})
		}
	}
	ret, _, _ := procCallNextHookEx.Call(mouseHook, uintptr(nCode), wParam, lParam)
	return ret
}

func mouseButton(msg uintptr, data uint32) (button int, down bool, ok bool) {
	switch msg {
	case wmLButtonDown:
		return 1, true, true
	case wmLButtonUp:
		return 1, false, true
	case wmRButtonDown:
		return 2, true, true
	case wmRButtonUp:
		return 2, false, true
	case wmMButtonDown:
		return 3, true, true
	case wmMButtonUp:
		return 3, false, true
	case wmXButtonDown, wmXButtonUp:
		button = 5
		if data>>16 == 1 {
			button = 4
		}
		return button, msg == wmXButtonDown, true
	}
	return 0, false, false
}
