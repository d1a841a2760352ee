//go:build darwin && cgo

package capture

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdint.h>

CGEventRef keyoverlayTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

static inline CFMachPortRef tapCreate(uintptr_t refcon) {
    CGEventMask mask = CGEventMaskBit(kCGEventKeyDown) |
        CGEventMaskBit(kCGEventKeyUp) |
        CGEventMaskBit(kCGEventFlagsChanged) |
        CGEventMaskBit(kCGEventLeftMouseDown) |
        CGEventMaskBit(kCGEventLeftMouseUp) |
        CGEventMaskBit(kCGEventRightMouseDown) |
        CGEventMaskBit(kCGEventRightMouseUp) |
        CGEventMaskBit(kCGEventOtherMouseDown) |
        CGEventMaskBit(kCGEventOtherMouseUp);
    return CGEventTapCreate(
        kCGSessionEventTap,
        kCGHeadInsertEventTap,
        kCGEventTapOptionListenOnly,
        mask,
        keyoverlayTapCallback,
        (void*)refcon
    );
}

static inline CFRunLoopSourceRef tapInstall(CFMachPortRef tap) {
    CFRunLoopSourceRef source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
    CFRunLoopAddSource(CFRunLoopGetCurrent(), source, kCFRunLoopCommonModes);
    CGEventTapEnable(tap, true);
    return source;
}

static inline void tapRemove(CFMachPortRef tap, CFRunLoopSourceRef source) {
    CGEventTapEnable(tap, false);
    CFRunLoopRemoveSource(CFRunLoopGetCurrent(), source, kCFRunLoopCommonModes);
    CFRelease(source);
    CFMachPortInvalidate(tap);
    CFRelease(tap);
}

static inline void tapRunFor(double seconds) {
    CFRunLoopRunInMode(kCFRunLoopDefaultMode, seconds, false);
}

static inline int axTrusted(void) {
    return AXIsProcessTrusted() ? 1 : 0;
}
*/
import "C"

import (
	"context"
	"fmt"
	"runtime/cgo"
	"sync"
	"unsafe"
)

// Each run-loop slice is short so cancellation is noticed promptly.
const tapSlice = 0.25

func accessibilityProbe() bool {
	return C.axTrusted() == 1
}

type tapStrategy struct {
	lifecycle
	opts  Options
	queue *Queue
	gate  *gate
	tap   C.CFMachPortRef
}

func newTapStrategy(opts Options) (Strategy, error) {
	return &tapStrategy{
		opts:  opts,
		queue: NewQueue(),
		gate:  newGate(opts),
	}, nil
}

func (t *tapStrategy) Name() string { return string(KindTap) }

// Run must be called on a locked OS thread: the tap is attached to that
// thread's run loop.
func (t *tapStrategy) Run(ctx context.Context) error {
	if !t.begin() {
		return ErrStarted
	}
	defer t.stop()

	log := t.opts.Logger
	if !accessibility.Check() {
		return fmt.Errorf("accessibility access denied: %w", ErrPermission)
	}

	h := cgo.NewHandle(t)
	defer h.Delete()

	t.tap = C.tapCreate(C.uintptr_t(h))
	if t.tap == 0 {
		return fmt.Errorf("create event tap: %w", ErrPermission)
	}
	source := C.tapInstall(t.tap)
	defer C.tapRemove(t.tap, source)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		t.gate.consume(runCtx, t.queue)
	}()
	go func() {
		defer wg.Done()
		watchFocus(runCtx, t.opts.FocusInterval, t.opts.Target, t.opts.Windows, t.opts.Tracker, log)
	}()

	t.running()
	log.Info().Msg("Event tap installed")

	for runCtx.Err() == nil {
		C.tapRunFor(C.double(tapSlice))
	}

	t.queue.Close()
	cancel()
	wg.Wait()
	return ctx.Err()
}

//export keyoverlayTapCallback
func keyoverlayTapCallback(proxy C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	t := cgo.Handle(uintptr(refcon)).Value().(*tapStrategy)

	switch eventType {
	case C.kCGEventTapDisabledByTimeout, C.kCGEventTapDisabledByUserInput:
		t.opts.Logger.Warn().Msg("Event tap disabled by the system, re-enabling")
		C.CGEventTapEnable(t.tap, true)
		return event
	}

	var code int64
	switch eventType {
	case C.kCGEventKeyDown, C.kCGEventKeyUp, C.kCGEventFlagsChanged:
		code = int64(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
	default:
		code = int64(C.CGEventGetIntegerValueField(event, C.kCGMouseEventButtonNumber))
	}

	for _, ev := range tapEvents(int(eventType), code, uint64(C.CGEventGetFlags(event))) {
		t.queue.Push(ev)
	}
	return event
}
