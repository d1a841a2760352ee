//go:build !cgo || !(windows || darwin || gohook)

package capture

// gohook needs cgo, and on Linux also the X11 development headers, so it
// is only built on Linux with -tags gohook.
func newGohookSource() (Source, error) {
	return nil, ErrUnsupported
}
