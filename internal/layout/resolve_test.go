package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPlatform is a small platform map used across layout tests:
// 64 KiB of RAM at 0x0380_0000 with a 4 KiB heap and a 2 KiB stack.
func testPlatform() PlatformMap {
	return PlatformMap{
		RAMBase:     0x03800000,
		RAMSize:     0x10000,
		HeapLength:  0x1000,
		StackLength: 0x800,
	}
}

func testSizes() SectionSizes {
	return SectionSizes{
		SectionBoot:   0x40,
		SectionText:   0x2000,
		SectionROData: 0x400,
		SectionSData:  0x80,
		SectionSData2: 0x40,
		SectionData:   0x200,
		SectionTData:  0x20,
		SectionFixup:  0x10,
		SectionExTab:  0x30,
		SectionExIdx:  0x18,
		SectionBSS:    0x300,
		SectionSBSS:   0x40,
		SectionSBSS2:  0x20,
		SectionTBSS:   0x10,
	}
}

func TestResolve_FixedOrder(t *testing.T) {
	l, err := Resolve(testPlatform(), testSizes())
	require.NoError(t, err)

	want := []string{
		SectionCold, SectionBoot, SectionText, SectionROData,
		SectionSData, SectionSData2, SectionData, SectionTData,
		SectionFixup, SectionExTab, SectionExIdx,
		SectionBSS, SectionSBSS, SectionSBSS2, SectionTBSS,
		SectionHeap, SectionStack,
	}
	var got []string
	for _, e := range l.Extents {
		got = append(got, e.Region.Name)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("region order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ContiguousThroughHeap(t *testing.T) {
	l, err := Resolve(testPlatform(), testSizes())
	require.NoError(t, err)

	for i := 1; i < len(l.Extents); i++ {
		prev, cur := l.Extents[i-1], l.Extents[i]
		if cur.Region.Name == SectionStack {
			assert.GreaterOrEqual(t, cur.Start, prev.End,
				"stack may leave slack but must not overlap heap")
			continue
		}
		assert.Equal(t, prev.End, cur.Start,
			"%s must start exactly at the end of %s", cur.Region.Name, prev.Region.Name)
	}
}

func TestResolve_ColdHeaderBlock(t *testing.T) {
	l, err := Resolve(testPlatform(), testSizes())
	require.NoError(t, err)

	cold, ok := l.Extent(SectionCold)
	require.True(t, ok)
	assert.Equal(t, testPlatform().RAMBase, cold.Start, "cold header sits at the image base")
	assert.Equal(t, uint32(ColdHeaderSize), cold.Len(), "cold header block is exactly 0x20 bytes")

	// Supplying an image size for .cold must not change the block.
	sizes := testSizes()
	sizes[SectionCold] = 0x100
	l2, err := Resolve(testPlatform(), sizes)
	require.NoError(t, err)
	cold2, _ := l2.Extent(SectionCold)
	assert.Equal(t, uint32(ColdHeaderSize), cold2.Len())
}

func TestResolve_SmallDataAdjacency(t *testing.T) {
	l, err := Resolve(testPlatform(), testSizes())
	require.NoError(t, err)

	ro, _ := l.Extent(SectionROData)
	sd, _ := l.Extent(SectionSData)
	sd2, _ := l.Extent(SectionSData2)
	assert.Equal(t, ro.End, sd.Start, ".sdata must directly follow .rodata")
	assert.Equal(t, sd.End, sd2.Start, ".sdata2 must directly follow .sdata")
}

func TestResolve_HeapAndStackTail(t *testing.T) {
	pm := testPlatform()
	l, err := Resolve(pm, testSizes())
	require.NoError(t, err)

	hs, he := l.HeapBounds()
	assert.Equal(t, l.ImageEnd(), hs, "heap starts where the image ends")
	assert.Equal(t, hs+pm.HeapLength, he)

	ss, se := l.StackBounds()
	assert.Equal(t, pm.RAMBase+pm.RAMSize, se, "stack top is the top of RAM")
	assert.Equal(t, pm.StackLength, se-ss)
	assert.Equal(t, se, l.StackTop())
	assert.LessOrEqual(t, he, ss, "heap must end at or below the stack base")
}

func TestResolve_HeapFill(t *testing.T) {
	pm := testPlatform()
	pm.HeapLength = HeapFill
	l, err := Resolve(pm, testSizes())
	require.NoError(t, err)

	_, he := l.HeapBounds()
	ss, _ := l.StackBounds()
	assert.Equal(t, ss, he, "filled heap extends to the stack base")
}

func TestResolve_NoRoom(t *testing.T) {
	pm := testPlatform()
	pm.RAMSize = 0x2000 // image alone needs more than 8 KiB
	_, err := Resolve(pm, testSizes())
	require.ErrorIs(t, err, ErrNoRoom)
}

func TestResolve_RejectsUnknownSection(t *testing.T) {
	sizes := testSizes()
	sizes[".mystery"] = 0x10
	_, err := Resolve(testPlatform(), sizes)
	require.ErrorIs(t, err, ErrUnknownSection)
}

func TestResolve_RejectsUnalignedStack(t *testing.T) {
	pm := testPlatform()
	pm.StackLength = 0x7FC
	_, err := Resolve(pm, testSizes())
	require.ErrorIs(t, err, ErrUnalignedStack)
}

func TestSymbols_RequiredContract(t *testing.T) {
	l, err := Resolve(testPlatform(), testSizes())
	require.NoError(t, err)

	for _, sym := range requiredSymbols {
		_, ok := l.Symbol(sym)
		assert.True(t, ok, "symbol %s must be exported", sym)
	}

	hl, _ := l.Symbol(SymHeapLength)
	assert.Equal(t, testPlatform().HeapLength, hl)
	sl, _ := l.Symbol(SymStackLength)
	assert.Equal(t, testPlatform().StackLength, sl)
}

func TestSymbols_NewlibAliases(t *testing.T) {
	l, err := Resolve(testPlatform(), testSizes())
	require.NoError(t, err)

	bss, _ := l.Symbol(SymBSSStart)
	alias, ok := l.Symbol("__bss_start__")
	require.True(t, ok)
	assert.Equal(t, bss, alias)

	heapStart, _ := l.Symbol(SymHeapStart)
	for _, name := range []string{"end", "_end", "__end__"} {
		v, ok := l.Symbol(name)
		require.True(t, ok, "alias %s", name)
		assert.Equal(t, heapStart, v, "alias %s must name the heap start", name)
	}

	top, ok := l.Symbol("__stack")
	require.True(t, ok)
	assert.Equal(t, l.StackTop(), top)
}

func TestZeroExtents(t *testing.T) {
	l, err := Resolve(testPlatform(), testSizes())
	require.NoError(t, err)

	var names []string
	for _, e := range l.ZeroExtents() {
		names = append(names, e.Region.Name)
		assert.Equal(t, ReservedOnly, e.Region.Load,
			"only reserved regions are zeroed at startup")
	}
	assert.Equal(t,
		[]string{SectionBSS, SectionSBSS, SectionSBSS2, SectionTBSS},
		names)
}
