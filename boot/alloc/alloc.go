package alloc

import (
	"fmt"

	"github.com/joshmaas/bootkit/internal/layout"
)

// Guard is the critical-section capability the allocator serializes through.
// *intr.Controller satisfies it.
type Guard interface {
	With(func())
}

// Stats holds allocator bookkeeping counters, for tests and diagnostics.
type Stats struct {
	AllocCalls   int
	FreeCalls    int
	ReallocCalls int
	FailedAllocs int

	BytesOutstanding uint32 // charged bytes currently allocated
	PeakOutstanding  uint32

	Splits       int // spans carved on allocation
	Coalesces    int // neighbor merges on free
	InPlaceGrows int // reallocs satisfied without moving
}

// span is one free range [off, off+size), kept in an address-ordered
// singly-linked list. Spans are out-of-band records; the region itself
// carries no allocator metadata.
type span struct {
	off  uint32
	size uint32
	next *span
}

// Allocator is the process heap allocator. Constructed once during cold
// boot from the heap bounds the layout computed; never torn down.
type Allocator struct {
	ram  []byte // backing memory for the whole modeled space
	base uint32 // address of ram[0]

	start uint32 // heap bounds, the only input trusted from startup
	end   uint32

	free  *span
	stats Stats

	cs    Guard
	fatal func(string) // escalation target for MustAlloc; see SetFatal
}

// New builds an allocator over [start, end) inside the backing memory.
// ram is the modeled address space beginning at address base; cs is the
// critical-section capability and must already be installed (the first
// Alloc may come from an interrupt-style callback).
func New(ram []byte, base, start, end uint32, cs Guard) (*Allocator, error) {
	if cs == nil {
		return nil, fmt.Errorf("%w: nil critical-section guard", ErrBadBounds)
	}
	if end <= start {
		return nil, fmt.Errorf("%w: [0x%X, 0x%X)", ErrBadBounds, start, end)
	}
	if start < base || uint64(end) > uint64(base)+uint64(len(ram)) {
		return nil, fmt.Errorf("%w: [0x%X, 0x%X) outside backing [0x%X, 0x%X)",
			ErrBadBounds, start, end, base, uint64(base)+uint64(len(ram)))
	}
	if !layout.IsAligned(start, layout.BookkeepAlign) || !layout.IsAligned(end, layout.BookkeepAlign) {
		return nil, fmt.Errorf("%w: bounds not 8-byte aligned [0x%X, 0x%X)",
			ErrBadBounds, start, end)
	}
	return &Allocator{
		ram:   ram,
		base:  base,
		start: start,
		end:   end,
		free:  &span{off: start, size: end - start},
		cs:    cs,
	}, nil
}

// SetFatal installs the escalation target for MustAlloc. The function must
// not return; the runtime context wires it to the fault hook.
func (a *Allocator) SetFatal(fatal func(string)) { a.fatal = fatal }

// Bounds returns the heap region [start, end).
func (a *Allocator) Bounds() (start, end uint32) { return a.start, a.end }

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	var s Stats
	a.cs.With(func() { s = a.stats })
	return s
}

// charge is the bookkeeping cost of a request: the size rounded up to the
// 8-byte granularity. Free and Realloc recompute it identically, so size
// plus alignment fully describe a span (no in-band headers).
func charge(size uint32) uint32 { return layout.AlignUp8(size) }

// Alloc returns the address of size bytes aligned to align, or
// ErrOutOfMemory when no free span within the heap bounds fits. Any
// returned range lies entirely within [start, end).
func (a *Allocator) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		return 0, ErrZeroSize
	}
	if !layout.IsPow2(align) {
		return 0, fmt.Errorf("%w: %d", ErrBadAlign, align)
	}

	var (
		off uint32
		err error
	)
	a.cs.With(func() {
		off, err = a.allocLocked(size, align)
	})
	return off, err
}

func (a *Allocator) allocLocked(size, align uint32) (uint32, error) {
	a.stats.AllocCalls++
	need := charge(size)

	var prev *span
	for s := a.free; s != nil; prev, s = s, s.next {
		aligned := layout.AlignUp(s.off, align)
		pad := aligned - s.off
		if pad > s.size || s.size-pad < need {
			continue
		}
		tail := s.size - pad - need

		switch {
		case pad == 0 && tail == 0:
			// Exact fit: drop the span.
			a.unlink(prev, s)
		case pad == 0:
			// Carve the front, keep the tail free.
			s.off += need
			s.size = tail
			a.stats.Splits++
		case tail == 0:
			// Keep the front pad free.
			s.size = pad
			a.stats.Splits++
		default:
			// Keep the pad, insert a new tail span after it.
			s.size = pad
			s.next = &span{off: aligned + need, size: tail, next: s.next}
			a.stats.Splits += 2
		}

		a.stats.BytesOutstanding += need
		if a.stats.BytesOutstanding > a.stats.PeakOutstanding {
			a.stats.PeakOutstanding = a.stats.BytesOutstanding
		}
		return aligned, nil
	}

	a.stats.FailedAllocs++
	debugLogf("Alloc(%d, align %d): FAILED", size, align)
	a.dumpFreeList(need)
	return 0, fmt.Errorf("%w: %d bytes (align %d) in [0x%X, 0x%X)",
		ErrOutOfMemory, size, align, a.start, a.end)
}

// MustAlloc is Alloc with no caller fallback: on failure it escalates to
// the installed fatal hook and does not return.
func (a *Allocator) MustAlloc(size, align uint32) uint32 {
	off, err := a.Alloc(size, align)
	if err != nil {
		if a.fatal != nil {
			a.fatal(err.Error())
		}
		panic(err) // no fatal hook installed; contract violation
	}
	return off
}

// Free returns the span at off, previously obtained from Alloc with the
// same size and alignment, to the free list. Adjacent free spans coalesce.
func (a *Allocator) Free(off, size, align uint32) error {
	if size == 0 {
		return ErrZeroSize
	}
	if !layout.IsPow2(align) {
		return fmt.Errorf("%w: %d", ErrBadAlign, align)
	}

	var err error
	a.cs.With(func() {
		err = a.freeLocked(off, size)
	})
	return err
}

func (a *Allocator) freeLocked(off, size uint32) error {
	a.stats.FreeCalls++
	need := charge(size)

	if off < a.start || off+need > a.end || off+need < off {
		return fmt.Errorf("%w: [0x%X, 0x%X) outside heap", ErrBadFree, off, off+need)
	}
	if !layout.IsAligned(off, layout.BookkeepAlign) {
		return fmt.Errorf("%w: 0x%X misaligned", ErrBadFree, off)
	}

	// Find the insertion point keeping the list address-ordered.
	var prev *span
	next := a.free
	for next != nil && next.off < off {
		prev, next = next, next.next
	}

	// Overlap with either neighbor means a double free or a size lie.
	if prev != nil && prev.off+prev.size > off {
		debugLogf("Free(0x%X, %d): overlaps preceding free span", off, size)
		return fmt.Errorf("%w: [0x%X, 0x%X) overlaps free span", ErrBadFree, off, off+need)
	}
	if next != nil && off+need > next.off {
		debugLogf("Free(0x%X, %d): overlaps following free span", off, size)
		return fmt.Errorf("%w: [0x%X, 0x%X) overlaps free span", ErrBadFree, off, off+need)
	}

	s := &span{off: off, size: need, next: next}
	if prev == nil {
		a.free = s
	} else {
		prev.next = s
	}

	// Coalesce forward, then backward.
	if next != nil && s.off+s.size == next.off {
		s.size += next.size
		s.next = next.next
		a.stats.Coalesces++
	}
	if prev != nil && prev.off+prev.size == s.off {
		prev.size += s.size
		prev.next = s.next
		a.stats.Coalesces++
	}

	a.stats.BytesOutstanding -= need
	return nil
}

// Realloc resizes the allocation at off from oldSize to newSize, preserving
// content up to the smaller of the two. It grows in place when the span
// immediately following is free and large enough; otherwise it allocates,
// copies, and frees the old span. Returns the (possibly moved) address.
func (a *Allocator) Realloc(off, oldSize, align, newSize uint32) (uint32, error) {
	if oldSize == 0 || newSize == 0 {
		return 0, ErrZeroSize
	}
	if !layout.IsPow2(align) {
		return 0, fmt.Errorf("%w: %d", ErrBadAlign, align)
	}

	var (
		newOff uint32
		err    error
	)
	a.cs.With(func() {
		newOff, err = a.reallocLocked(off, oldSize, align, newSize)
	})
	return newOff, err
}

func (a *Allocator) reallocLocked(off, oldSize, align, newSize uint32) (uint32, error) {
	a.stats.ReallocCalls++
	oldNeed, newNeed := charge(oldSize), charge(newSize)

	if newNeed == oldNeed {
		return off, nil
	}
	if newNeed < oldNeed {
		// Shrink: return the tail.
		if err := a.freeLocked(off+newNeed, oldNeed-newNeed); err != nil {
			return 0, err
		}
		// freeLocked counted a FreeCalls tick for an internal operation.
		a.stats.FreeCalls--
		return off, nil
	}

	// Grow in place when the adjoining span is free and large enough.
	grow := newNeed - oldNeed
	var prev *span
	for s := a.free; s != nil; prev, s = s, s.next {
		if s.off != off+oldNeed {
			continue
		}
		if s.size < grow {
			break
		}
		if s.size == grow {
			a.unlink(prev, s)
		} else {
			s.off += grow
			s.size -= grow
			a.stats.Splits++
		}
		a.stats.InPlaceGrows++
		a.stats.BytesOutstanding += grow
		if a.stats.BytesOutstanding > a.stats.PeakOutstanding {
			a.stats.PeakOutstanding = a.stats.BytesOutstanding
		}
		return off, nil
	}

	// Move: allocate, copy payload, release the old span.
	newOff, err := a.allocLocked(newSize, align)
	if err != nil {
		return 0, err
	}
	copy(a.bytes(newOff, oldSize), a.bytes(off, oldSize))
	if err := a.freeLocked(off, oldSize); err != nil {
		return 0, err
	}
	a.stats.AllocCalls--
	a.stats.FreeCalls--
	return newOff, nil
}

// unlink removes s from the free list given its predecessor.
func (a *Allocator) unlink(prev, s *span) {
	if prev == nil {
		a.free = s.next
	} else {
		prev.next = s.next
	}
}

// Bytes returns the backing bytes of an allocated span for the caller to
// read and write. The view aliases the modeled memory.
func (a *Allocator) Bytes(off, size uint32) ([]byte, error) {
	if off < a.start || uint64(off)+uint64(size) > uint64(a.end) {
		return nil, fmt.Errorf("%w: [0x%X, +%d) outside heap", ErrBadBounds, off, size)
	}
	return a.bytes(off, size), nil
}

func (a *Allocator) bytes(off, size uint32) []byte {
	i := off - a.base
	return a.ram[i : i+size]
}
