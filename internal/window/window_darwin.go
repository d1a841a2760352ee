//go:build darwin && cgo

package window

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework AppKit -framework CoreGraphics -framework Foundation
#import <AppKit/AppKit.h>
#import <CoreGraphics/CoreGraphics.h>
#include <string.h>

typedef struct {
	int  pid;
	char title[512];
	char owner[256];
	char bundle[256];
} kbWindow;

static void kbCopy(char *dst, size_t n, id s) {
	dst[0] = 0;
	if (s == nil || ![s isKindOfClass:[NSString class]]) return;
	strlcpy(dst, [(NSString *)s UTF8String], n);
}

static void kbBundle(kbWindow *w) {
	NSRunningApplication *app = [NSRunningApplication runningApplicationWithProcessIdentifier:w->pid];
	if (app != nil) {
		kbCopy(w->bundle, sizeof(w->bundle), [app bundleIdentifier]);
	}
}

static int kbFrontmost(kbWindow *out) {
	@autoreleasepool {
		NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
		if (app == nil) return 0;
		out->pid = [app processIdentifier];
		kbCopy(out->owner, sizeof(out->owner), [app localizedName]);
		kbCopy(out->bundle, sizeof(out->bundle), [app bundleIdentifier]);
		out->title[0] = 0;

		CFArrayRef list = CGWindowListCopyWindowInfo(
			kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements, kCGNullWindowID);
		if (list == NULL) return 1;
		NSArray *windows = (NSArray *)list;
		for (NSDictionary *w in windows) {
			if ([w[(id)kCGWindowOwnerPID] intValue] != out->pid) continue;
			if ([w[(id)kCGWindowLayer] intValue] != 0) continue;
			kbCopy(out->title, sizeof(out->title), w[(id)kCGWindowName]);
			break;
		}
		CFRelease(list);
		return 1;
	}
}

static int kbListWindows(kbWindow *out, int max) {
	@autoreleasepool {
		CFArrayRef list = CGWindowListCopyWindowInfo(
			kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements, kCGNullWindowID);
		if (list == NULL) return 0;
		int n = 0;
		NSArray *windows = (NSArray *)list;
		for (NSDictionary *w in windows) {
			if (n >= max) break;
			if ([w[(id)kCGWindowLayer] intValue] != 0) continue;
			kbWindow *cur = &out[n];
			cur->pid = [w[(id)kCGWindowOwnerPID] intValue];
			kbCopy(cur->title, sizeof(cur->title), w[(id)kCGWindowName]);
			if (cur->title[0] == 0) continue;
			kbCopy(cur->owner, sizeof(cur->owner), w[(id)kCGWindowOwnerName]);
			kbBundle(cur);
			n++;
		}
		CFRelease(list);
		return n;
	}
}
*/
import "C"

import "strconv"

const maxListed = 256

type system struct{}

func newSystem() Provider { return system{} }

func (system) Foreground() (Info, bool) {
	var w C.kbWindow
	if C.kbFrontmost(&w) == 0 {
		return Info{}, false
	}
	return fromC(&w), true
}

func (system) List() []Info {
	buf := make([]C.kbWindow, maxListed)
	n := int(C.kbListWindows(&buf[0], C.int(len(buf))))
	out := make([]Info, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fromC(&buf[i]))
	}
	return out
}

func fromC(w *C.kbWindow) Info {
	return Info{
		ID:      strconv.Itoa(int(w.pid)),
		Title:   C.GoString(&w.title[0]),
		Process: C.GoString(&w.owner[0]),
		Class:   C.GoString(&w.bundle[0]),
	}
}
