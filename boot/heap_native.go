//go:build !hostsim

package boot

import (
	"github.com/joshmaas/bootkit/boot/alloc"
	"github.com/joshmaas/bootkit/boot/intr"
)

// newHeapAllocator builds the native-target allocator: the free list runs
// directly over the heap region of the modeled physical RAM. The
// host-simulation backend never compiles into this build.
func newHeapAllocator(mem *Memory, start, end uint32, cs *intr.Controller) (*alloc.Allocator, error) {
	return alloc.New(mem.Bytes(), mem.Base(), start, end, cs)
}
