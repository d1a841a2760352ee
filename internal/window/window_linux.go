//go:build linux

package window

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/icccm"
)

// reconnectDelay limits how often a missing or lost X connection is retried.
const reconnectDelay = 2 * time.Second

// display is the part of the X server the provider reads.
type display interface {
	ActiveWindow() (uint32, error)
	ClientList() ([]uint32, error)
	Title(win uint32) string
	Class(win uint32) string
	Pid(win uint32) int
	Activate(win uint32) error
	Close()
}

// system asks the X server over one persistent connection. Wayland
// sessions without XWayland report no foreground window.
type system struct {
	procRoot string
	connect  func() (display, error)

	mu        sync.Mutex
	conn      display
	nextRetry time.Time
}

func newSystem() Provider {
	return &system{procRoot: "/proc", connect: dialX}
}

// acquire returns the shared connection, dialling it if needed.
func (s *system) acquire() (display, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn, true
	}
	now := time.Now()
	if now.Before(s.nextRetry) {
		return nil, false
	}
	conn, err := s.connect()
	if err != nil {
		s.nextRetry = now.Add(reconnectDelay)
		return nil, false
	}
	s.conn = conn
	return conn, true
}

// drop forgets a connection that failed a root-window request.
func (s *system) drop(conn display) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == conn {
		s.conn.Close()
		s.conn = nil
		s.nextRetry = time.Now().Add(reconnectDelay)
	}
}

func (s *system) Foreground() (Info, bool) {
	d, ok := s.acquire()
	if !ok {
		return Info{}, false
	}
	win, err := d.ActiveWindow()
	if err != nil {
		s.drop(d)
		return Info{}, false
	}
	if win == 0 {
		return Info{}, false
	}
	return s.describe(d, win), true
}

func (s *system) List() []Info {
	d, ok := s.acquire()
	if !ok {
		return nil
	}
	wins, err := d.ClientList()
	if err != nil {
		s.drop(d)
		return nil
	}
	var list []Info
	for _, win := range wins {
		info := s.describe(d, win)
		if info.Title != "" {
			list = append(list, info)
		}
	}
	return list
}

// Focus asks the window manager to activate the window.
func (s *system) Focus(id string) error {
	win, err := strconv.ParseUint(id, 10, 32)
	if err != nil || win == 0 {
		return fmt.Errorf("invalid window id %q", id)
	}
	d, ok := s.acquire()
	if !ok {
		return ErrFocusUnsupported
	}
	return d.Activate(uint32(win))
}

func (s *system) describe(d display, win uint32) Info {
	info := Info{
		ID:    strconv.FormatUint(uint64(win), 10),
		Title: d.Title(win),
		Class: d.Class(win),
	}
	if pid := d.Pid(win); pid > 0 {
		info.Process = s.processName(pid)
	}
	return info
}

func (s *system) processName(pid int) string {
	data, err := os.ReadFile(filepath.Join(s.procRoot, strconv.Itoa(pid), "comm"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// xDisplay reads EWMH and ICCCM properties through xgbutil.
type xDisplay struct {
	xu *xgbutil.XUtil
}

func dialX() (display, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	return xDisplay{xu: xu}, nil
}

func (d xDisplay) ActiveWindow() (uint32, error) {
	win, err := ewmh.ActiveWindowGet(d.xu)
	return uint32(win), err
}

func (d xDisplay) ClientList() ([]uint32, error) {
	wins, err := ewmh.ClientListGet(d.xu)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(wins))
	for i, w := range wins {
		out[i] = uint32(w)
	}
	return out, nil
}

func (d xDisplay) Title(win uint32) string {
	if name, err := ewmh.WmNameGet(d.xu, xproto.Window(win)); err == nil && name != "" {
		return name
	}
	name, _ := icccm.WmNameGet(d.xu, xproto.Window(win))
	return name
}

func (d xDisplay) Class(win uint32) string {
	class, err := icccm.WmClassGet(d.xu, xproto.Window(win))
	if err != nil || class == nil {
		return ""
	}
	return class.Class
}

func (d xDisplay) Pid(win uint32) int {
	pid, err := ewmh.WmPidGet(d.xu, xproto.Window(win))
	if err != nil {
		return 0
	}
	return int(pid)
}

func (d xDisplay) Activate(win uint32) error {
	return ewmh.ActiveWindowReq(d.xu, xproto.Window(win))
}

func (d xDisplay) Close() {
	d.xu.Conn().Close()
}
