//go:build !unix

package boot

// mapRAM reserves size bytes from the host heap on platforms without
// anonymous mappings.
func mapRAM(size int) ([]byte, func() error, error) {
	return make([]byte, size), func() error { return nil }, nil
}
