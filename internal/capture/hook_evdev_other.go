//go:build !linux

package capture

func newEvdevSource() (Source, error) {
	return nil, ErrUnsupported
}
