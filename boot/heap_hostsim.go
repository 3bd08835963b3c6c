//go:build hostsim

package boot

import (
	"github.com/joshmaas/bootkit/boot/alloc"
	"github.com/joshmaas/bootkit/boot/intr"
)

// newHeapAllocator builds the host-simulation allocator: same free-list
// policy and the same [start, end) accounting, but backed by OS-provided
// memory instead of the modeled physical region. The physically-bounded
// backend never compiles into this build.
func newHeapAllocator(_ *Memory, start, end uint32, cs *intr.Controller) (*alloc.Allocator, error) {
	backing := make([]byte, end-start)
	return alloc.New(backing, start, start, end, cs)
}
