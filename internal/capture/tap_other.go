//go:build !darwin || !cgo

package capture

// Only the macOS tap needs an extra grant; elsewhere input access is
// governed by the hook or device permissions themselves.
func accessibilityProbe() bool { return true }

func newTapStrategy(Options) (Strategy, error) {
	return nil, ErrUnsupported
}
