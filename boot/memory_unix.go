//go:build unix

package boot

import (
	"golang.org/x/sys/unix"
)

// mapRAM reserves size bytes of anonymous, private memory. The mapping is
// page-backed like the controller's physically-addressed RAM and stays out
// of the Go heap's way.
func mapRAM(size int) ([]byte, func() error, error) {
	if size == 0 {
		return []byte{}, func() error { return nil }, nil
	}
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	release := func() error {
		return unix.Munmap(data)
	}
	return data, release, nil
}
