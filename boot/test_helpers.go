package boot

import (
	"testing"

	"github.com/joshmaas/bootkit/internal/layout"
)

// Shared fixtures for boot tests: 64 KiB of RAM at 0x0380_0000, a 4 KiB
// heap, and a 2 KiB stack.

func testPlatform() layout.PlatformMap {
	return layout.PlatformMap{
		RAMBase:     0x03800000,
		RAMSize:     0x10000,
		HeapLength:  0x1000,
		StackLength: 0x800,
	}
}

func testSizes() layout.SectionSizes {
	return layout.SectionSizes{
		layout.SectionBoot:   0x40,
		layout.SectionText:   0x800,
		layout.SectionROData: 0x100,
		layout.SectionSData:  0x40,
		layout.SectionSData2: 0x20,
		layout.SectionData:   0x80,
		layout.SectionTData:  0x20,
		layout.SectionFixup:  0x10,
		layout.SectionBSS:    0x200,
		layout.SectionSBSS:   0x40,
		layout.SectionSBSS2:  0x20,
		layout.SectionTBSS:   0x10,
	}
}

// newTestImage resolves the layout, reserves memory, and installs a valid
// cold header, returning both with cleanup registered.
func newTestImage(t *testing.T) (*Memory, *layout.Layout) {
	t.Helper()
	lay, err := layout.Resolve(testPlatform(), testSizes())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	mem, err := NewMemory(testPlatform())
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	t.Cleanup(func() {
		if err := mem.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	if err := InstallColdHeader(mem, lay, DefaultColdHeader); err != nil {
		t.Fatalf("InstallColdHeader: %v", err)
	}
	return mem, lay
}

// loadImage models the uploader flashing the loaded sections over whatever
// the RAM held: a valid cold header and an empty fix-up table. Tests that
// pre-fill memory with a garbage pattern call this afterwards.
func loadImage(t *testing.T, mem *Memory, lay *layout.Layout) {
	t.Helper()
	if err := InstallColdHeader(mem, lay, DefaultColdHeader); err != nil {
		t.Fatalf("InstallColdHeader: %v", err)
	}
	fix, _ := lay.Extent(layout.SectionFixup)
	b, err := mem.Slice(fix.Start, fix.End)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	for i := range b {
		b[i] = 0
	}
}
