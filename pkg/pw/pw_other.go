//go:build !linux || !cgo

package pw

// Connect reports that no PipeWire backend is available on this platform.
func Connect() (Conn, error) {
	return nil, ErrUnsupported
}
