//go:build linux

package capture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/holoplot/go-evdev"

	"keyoverlay/internal/keys"
)

// evdevSource reads every keyboard and mouse under /dev/input directly.
// It works under X11 and Wayland alike but needs read access to the
// device nodes (root or the "input" group).
type evdevSource struct{}

func newEvdevSource() (Source, error) { return evdevSource{}, nil }

func (evdevSource) Name() string { return SourceEvdev }

func (evdevSource) Run(ctx context.Context, emit func(Event), ready func()) error {
	devices, err := openInputDevices()
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for i, dev := range devices {
		wg.Add(1)
		go func(i int, dev *evdev.InputDevice) {
			defer wg.Done()
			readEvents(i, dev.ReadOne, emit)
		}(i, dev)
	}
	ready()

	readersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(readersDone)
	}()

	select {
	case <-ctx.Done():
		for _, dev := range devices {
			dev.Close()
		}
		<-readersDone
		return nil
	case <-readersDone:
		for _, dev := range devices {
			dev.Close()
		}
		return errors.New("all input devices went away")
	}
}

func openInputDevices() ([]*evdev.InputDevice, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	var devices []*evdev.InputDevice
	denied := 0
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				denied++
			}
			continue
		}
		if !isKeyDevice(dev) {
			dev.Close()
			continue
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		if denied > 0 {
			return nil, fmt.Errorf("open /dev/input: %w", ErrPermission)
		}
		return nil, errors.New("no keyboard or mouse found under /dev/input")
	}
	return devices, nil
}

func isKeyDevice(dev *evdev.InputDevice) bool {
	if !slices.Contains(dev.CapableTypes(), evdev.EV_KEY) {
		return false
	}
	codes := dev.CapableEvents(evdev.EV_KEY)
	return slices.Contains(codes, evdev.KEY_A) || slices.Contains(codes, evdev.BTN_LEFT)
}

// readEvents forwards key events from one device until next fails. Codes
// are tagged with the device index so that the same key on two devices is
// held independently.
func readEvents(device int, next func() (*evdev.InputEvent, error), emit func(Event)) {
	for {
		ev, err := next()
		if err != nil {
			return
		}
		if out, ok := evdevEvent(ev); ok {
			out.Key = keys.OnDevice(out.Key, device)
			emit(out)
		}
	}
}

// evdevEvent maps EV_KEY value 1 (press) and 0 (release). Value 2 is
// autorepeat and carries no new state.
func evdevEvent(ev *evdev.InputEvent) (Event, bool) {
	if ev.Type != evdev.EV_KEY {
		return Event{}, false
	}
	key := keys.Evdev(uint16(ev.Code), ev.CodeName())
	switch ev.Value {
	case 1:
		return Event{Key: key, Down: true}, true
	case 0:
		return Event{Key: key, Down: false}, true
	}
	return Event{}, false
}
