//go:build !windows

package capture

func newNativeSource() (Source, error) {
	return nil, ErrUnsupported
}
