package alloc

import (
	"fmt"
	"os"
)

// Debug flag - set to true to enable verbose logging (compile-time toggle).
const debugAlloc = false

// Runtime debug flag for allocation logging - controlled by BOOTKIT_LOG_ALLOC
// env var. Tracing goes to stderr, never through the heap under test.
var logAlloc = os.Getenv("BOOTKIT_LOG_ALLOC") != ""

// debugLogf prints debug messages if either debug toggle is enabled.
func debugLogf(format string, args ...any) {
	if debugAlloc || logAlloc {
		fmt.Fprintf(os.Stderr, "[ALLOC] "+format+"\n", args...)
	}
}

// dumpFreeList dumps the current free list for debugging.
func (a *Allocator) dumpFreeList(need uint32) {
	if !debugAlloc && !logAlloc {
		return
	}

	fmt.Fprintf(os.Stderr, "\n=== FREE LIST DUMP (need=%d) ===\n", need)
	fmt.Fprintf(os.Stderr, "heap: [0x%X, 0x%X)\n", a.start, a.end)
	fmt.Fprintf(os.Stderr, "outstanding: %d (peak %d)\n",
		a.stats.BytesOutstanding, a.stats.PeakOutstanding)
	n := 0
	for s := a.free; s != nil; s = s.next {
		fmt.Fprintf(os.Stderr, "  span %d: [0x%X, 0x%X) size=%d\n",
			n, s.off, s.off+s.size, s.size)
		n++
	}
	fmt.Fprintf(os.Stderr, "=== END DUMP (%d spans) ===\n", n)
}
