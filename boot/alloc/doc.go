// Package alloc implements the heap allocator: the only dynamic-memory
// source in the process, strictly bounded to the heap region the startup
// sequencer hands it.
//
// # Overview
//
// The allocator keeps an address-ordered free list of spans over
// [HeapStart, HeapEnd). Allocation is first-fit with front-pad carving for
// alignment; deallocation coalesces with both neighbors. Bookkeeping is
// out-of-band (host-side span records, nothing stored in the region), so an
// allocation of n bytes charges exactly n rounded to the 8-byte bookkeeping
// granularity — a 1024-byte heap holds sixteen whole 64-byte allocations.
//
// # Operations
//
//   - Alloc(size, align): returns the address of a span inside the heap
//     region, or ErrOutOfMemory. The region never grows.
//   - Free(off, size, align): returns a span to the free list.
//   - Realloc(off, oldSize, align, newSize): grows in place when the
//     neighboring span allows it, otherwise moves.
//   - MustAlloc: Alloc with no caller fallback; failure escalates to the
//     fault hook, since a no-OS environment has no recovery path without a
//     working allocator.
//
// # Concurrency
//
// Every operation runs inside the critical-section lock (a single global
// mutual-exclusion domain, not per-allocation), so the allocator is safe
// from both the main execution context and interrupt-style callbacks. No
// operation suspends: the free-list walk runs with delivery disabled, and
// its worst-case duration sets the interrupt-latency floor.
//
// # Backends
//
// The free-list policy is backend-independent; what differs is the backing
// memory. The native build points the allocator at the modeled physical
// region, the host-simulation build at an OS-backed slice of the same
// length. Selection is a build-configuration choice in the boot package,
// never a runtime branch.
package alloc
