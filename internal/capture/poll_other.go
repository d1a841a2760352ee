//go:build !windows

package capture

func newKeyStateReader() (KeyStateReader, error) {
	return nil, ErrUnsupported
}
