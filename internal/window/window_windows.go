//go:build windows

package window

import (
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowText            = user32.NewProc("GetWindowTextW")
	procGetClassName             = user32.NewProc("GetClassNameW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procShowWindow               = user32.NewProc("ShowWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
)

const swRestore = 9

// syscall.NewCallback slots are never released, so the enumeration
// callback is created once and collects into enumOut under enumMu.
var (
	enumMu       sync.Mutex
	enumOut      []Info
	enumCallback = syscall.NewCallback(enumProc)
)

type system struct{}

func newSystem() Provider { return system{} }

func (system) Foreground() (Info, bool) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return Info{}, false
	}
	return describe(hwnd), true
}

func (system) List() []Info {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumOut = nil
	procEnumWindows.Call(enumCallback, 0)
	out := enumOut
	enumOut = nil
	return out
}

// Focus restores a minimized window and brings it to the foreground.
func (system) Focus(id string) error {
	hwnd, err := strconv.ParseUint(id, 10, 64)
	if err != nil || hwnd == 0 {
		return fmt.Errorf("invalid window handle %q", id)
	}
	procShowWindow.Call(uintptr(hwnd), swRestore)
	if ok, _, err := procSetForegroundWindow.Call(uintptr(hwnd)); ok == 0 {
		return fmt.Errorf("SetForegroundWindow: %w", err)
	}
	return nil
}

func enumProc(hwnd uintptr, _ uintptr) uintptr {
	visible, _, _ := procIsWindowVisible.Call(hwnd)
	if visible != 0 {
		if info := describe(hwnd); info.Title != "" {
			enumOut = append(enumOut, info)
		}
	}
	return 1
}

func describe(hwnd uintptr) Info {
	info := Info{ID: strconv.FormatUint(uint64(hwnd), 10)}

	title := make([]uint16, 512)
	n, _, _ := procGetWindowText.Call(hwnd, uintptr(unsafe.Pointer(&title[0])), uintptr(len(title)))
	info.Title = windows.UTF16ToString(title[:n])

	class := make([]uint16, 256)
	n, _, _ = procGetClassName.Call(hwnd, uintptr(unsafe.Pointer(&class[0])), uintptr(len(class)))
	info.Class = windows.UTF16ToString(class[:n])

	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	info.Process = processName(pid)

	return info
}

func processName(pid uint32) string {
	if pid == 0 {
		return ""
	}
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return filepath.Base(windows.UTF16ToString(buf[:size]))
}
