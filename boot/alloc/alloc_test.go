package alloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshmaas/bootkit/boot/intr"
)

const (
	testBase  = 0x03800000
	testHeapK = 4096
)

// newTestAllocator builds an allocator over a heapSize-byte region placed
// at testBase inside a standalone backing slice.
func newTestAllocator(t *testing.T, heapSize uint32) *Allocator {
	t.Helper()
	ram := make([]byte, heapSize)
	a, err := New(ram, testBase, testBase, testBase+heapSize, intr.NewController())
	require.NoError(t, err)
	return a
}

func TestNew_Validation(t *testing.T) {
	ram := make([]byte, 64)
	cs := intr.NewController()

	_, err := New(ram, 0, 32, 16, cs)
	require.ErrorIs(t, err, ErrBadBounds, "inverted bounds")

	_, err = New(ram, 0, 0, 128, cs)
	require.ErrorIs(t, err, ErrBadBounds, "bounds past backing memory")

	_, err = New(ram, 0, 4, 60, cs)
	require.ErrorIs(t, err, ErrBadBounds, "misaligned bounds")

	_, err = New(ram, 0, 0, 64, nil)
	require.ErrorIs(t, err, ErrBadBounds, "missing guard")

	_, err = New(ram, 0, 0, 64, cs)
	require.NoError(t, err)
}

func TestAlloc_WithinBounds(t *testing.T) {
	a := newTestAllocator(t, testHeapK)
	start, end := a.Bounds()

	for _, size := range []uint32{1, 8, 24, 64, 129, 512} {
		off, err := a.Alloc(size, 8)
		require.NoError(t, err, "Alloc(%d)", size)
		assert.GreaterOrEqual(t, off, start)
		assert.LessOrEqual(t, uint64(off)+uint64(size), uint64(end),
			"returned range must lie within [heap_start, heap_end)")
	}
}

func TestAlloc_Alignment(t *testing.T) {
	a := newTestAllocator(t, testHeapK)

	for _, align := range []uint32{1, 2, 4, 8, 16, 64, 256} {
		off, err := a.Alloc(24, align)
		require.NoError(t, err, "align %d", align)
		assert.Zero(t, off%max(align, 1), "offset 0x%X not aligned to %d", off, align)
	}

	_, err := a.Alloc(8, 24)
	require.ErrorIs(t, err, ErrBadAlign)
	_, err = a.Alloc(0, 8)
	require.ErrorIs(t, err, ErrZeroSize)
}

// Heap region of 1024 bytes: ten 64-byte allocations succeed, an oversized
// 960-byte request fails, and after filling the region to its sixteen-slot
// capacity the seventeenth 64-byte request fails too.
func TestAlloc_ExactCapacityScenario(t *testing.T) {
	a := newTestAllocator(t, 1024)

	var offs []uint32
	for i := 0; i < 10; i++ {
		off, err := a.Alloc(64, 8)
		require.NoError(t, err, "allocation %d", i+1)
		offs = append(offs, off)
	}

	_, err := a.Alloc(960, 8)
	require.ErrorIs(t, err, ErrOutOfMemory, "oversized request must fail, not grow")

	for i := 10; i < 16; i++ {
		off, err := a.Alloc(64, 8)
		require.NoError(t, err, "allocation %d", i+1)
		offs = append(offs, off)
	}

	_, err = a.Alloc(64, 8)
	require.ErrorIs(t, err, ErrOutOfMemory, "1024/64 = 16 whole allocations, no more")

	seen := map[uint32]bool{}
	for _, off := range offs {
		assert.False(t, seen[off], "offset 0x%X handed out twice", off)
		seen[off] = true
	}
}

func TestFree_CoalescesAndReuses(t *testing.T) {
	a := newTestAllocator(t, 256)

	x, err := a.Alloc(64, 8)
	require.NoError(t, err)
	y, err := a.Alloc(64, 8)
	require.NoError(t, err)
	z, err := a.Alloc(128, 8)
	require.NoError(t, err)

	// Region is full.
	_, err = a.Alloc(8, 8)
	require.ErrorIs(t, err, ErrOutOfMemory)

	// Free the two small neighbors; a 128-byte request must fit in the
	// coalesced hole.
	require.NoError(t, a.Free(x, 64, 8))
	require.NoError(t, a.Free(y, 64, 8))
	w, err := a.Alloc(128, 8)
	require.NoError(t, err)
	assert.Equal(t, x, w, "coalesced hole starts at the first freed span")

	require.NoError(t, a.Free(z, 128, 8))
	require.NoError(t, a.Free(w, 128, 8))
	assert.Zero(t, a.Stats().BytesOutstanding)
	assert.Positive(t, a.Stats().Coalesces)
}

func TestFree_RejectsBadSpans(t *testing.T) {
	a := newTestAllocator(t, 256)
	off, err := a.Alloc(64, 8)
	require.NoError(t, err)

	require.ErrorIs(t, a.Free(testBase-8, 8, 8), ErrBadFree, "below heap")
	require.ErrorIs(t, a.Free(testBase+256, 8, 8), ErrBadFree, "past heap")
	require.ErrorIs(t, a.Free(off+4, 8, 8), ErrBadFree, "misaligned")
	require.ErrorIs(t, a.Free(off+64, 64, 8), ErrBadFree, "overlaps the free tail")

	require.NoError(t, a.Free(off, 64, 8))
	require.ErrorIs(t, a.Free(off, 64, 8), ErrBadFree, "double free")
}

func TestOutstandingNeverExceedsRegion(t *testing.T) {
	const heapSize = 1024
	a := newTestAllocator(t, heapSize)
	rng := rand.New(rand.NewSource(1))

	type live struct{ off, size uint32 }
	var spans []live

	for i := 0; i < 4096; i++ {
		if len(spans) > 0 && rng.Intn(2) == 0 {
			i := rng.Intn(len(spans))
			s := spans[i]
			require.NoError(t, a.Free(s.off, s.size, 8))
			spans = append(spans[:i], spans[i+1:]...)
		} else {
			size := uint32(1 + rng.Intn(192))
			off, err := a.Alloc(size, 8)
			if err != nil {
				require.ErrorIs(t, err, ErrOutOfMemory)
				continue
			}
			assert.GreaterOrEqual(t, off, uint32(testBase))
			assert.LessOrEqual(t, uint64(off)+uint64(size), uint64(testBase+heapSize))
			spans = append(spans, live{off, size})
		}
		assert.LessOrEqual(t, a.Stats().BytesOutstanding, uint32(heapSize),
			"outstanding bytes may never exceed the region size")
	}

	for _, s := range spans {
		require.NoError(t, a.Free(s.off, s.size, 8))
	}
	assert.Zero(t, a.Stats().BytesOutstanding)

	// Everything freed: the full region must be allocatable again.
	_, err := a.Alloc(heapSize, 8)
	require.NoError(t, err, "free list must coalesce back to one span")
}

func TestRealloc(t *testing.T) {
	a := newTestAllocator(t, 512)

	off, err := a.Alloc(64, 8)
	require.NoError(t, err)
	buf, err := a.Bytes(off, 64)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = byte(i)
	}

	// Grow in place: nothing allocated after it yet.
	off2, err := a.Realloc(off, 64, 8, 128)
	require.NoError(t, err)
	assert.Equal(t, off, off2, "grow into the adjoining free span")
	assert.Equal(t, 1, a.Stats().InPlaceGrows)

	// Block in-place growth, forcing a move.
	blocker, err := a.Alloc(64, 8)
	require.NoError(t, err)
	off3, err := a.Realloc(off2, 128, 8, 256)
	require.NoError(t, err)
	assert.NotEqual(t, off2, off3, "blocked grow must move")

	moved, err := a.Bytes(off3, 64)
	require.NoError(t, err)
	for i := range moved {
		require.Equal(t, byte(i), moved[i], "payload preserved across move")
	}

	// Shrink returns the tail.
	off4, err := a.Realloc(off3, 256, 8, 64)
	require.NoError(t, err)
	assert.Equal(t, off3, off4)

	require.NoError(t, a.Free(blocker, 64, 8))
	require.NoError(t, a.Free(off4, 64, 8))
	assert.Zero(t, a.Stats().BytesOutstanding)
}

func TestMustAlloc_EscalatesToFatal(t *testing.T) {
	a := newTestAllocator(t, 64)

	var msg string
	sentinel := "halted"
	a.SetFatal(func(m string) {
		msg = m
		panic(sentinel)
	})

	assert.NotPanics(t, func() { a.MustAlloc(32, 8) })
	require.PanicsWithValue(t, sentinel, func() { a.MustAlloc(512, 8) })
	assert.Contains(t, msg, "out of memory")
}

func TestAlloc_SerializedThroughGuard(t *testing.T) {
	ram := make([]byte, 1024)
	cs := intr.NewController()
	a, err := New(ram, 0, 8, 1024, cs)
	require.NoError(t, err)

	// An interrupt-style callback allocating while the main context holds
	// a critical section: delivery is deferred, then the callback's own
	// nested sections restore state correctly.
	var cbOff uint32
	cs.With(func() {
		cs.Raise(func() {
			off, allocErr := a.Alloc(64, 8)
			require.NoError(t, allocErr)
			cbOff = off
		})
		assert.Zero(t, cbOff, "callback must not run inside the critical section")
	})
	assert.NotZero(t, cbOff, "callback ran at outermost release")
	assert.True(t, cs.Enabled())
	assert.Equal(t, uint32(64), a.Stats().BytesOutstanding)
}
