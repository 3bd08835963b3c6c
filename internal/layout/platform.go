package layout

import "fmt"

// HeapFill is a sentinel heap length meaning "extend the heap to the bottom
// of the stack region", consuming whatever RAM remains after the image.
const HeapFill = ^uint32(0)

// PlatformMap supplies the memory region base/size values that do not come
// from this descriptor: where addressable RAM lives and how large the heap
// and stack regions are. These are platform configuration constants, fixed
// at build time.
type PlatformMap struct {
	RAMBase     uint32
	RAMSize     uint32
	HeapLength  uint32
	StackLength uint32
}

// Validate fails fast on a platform map the layout cannot be built from.
func (pm PlatformMap) Validate() error {
	if pm.RAMSize == 0 {
		return fmt.Errorf("layout: platform map has zero RAM size")
	}
	if pm.RAMBase+pm.RAMSize < pm.RAMBase {
		return fmt.Errorf("layout: RAM region wraps the 32-bit address space")
	}
	if pm.StackLength == 0 {
		return fmt.Errorf("layout: platform map has zero stack length")
	}
	if !IsAligned(pm.StackLength, StackAlign) {
		return fmt.Errorf("%w: stack length 0x%X", ErrUnalignedStack, pm.StackLength)
	}
	if !IsAligned(pm.RAMBase+pm.RAMSize, StackAlign) {
		return fmt.Errorf("%w: RAM top 0x%X", ErrUnalignedStack, pm.RAMBase+pm.RAMSize)
	}
	if pm.StackLength > pm.RAMSize {
		return fmt.Errorf("%w: stack length 0x%X exceeds RAM size 0x%X",
			ErrNoRoom, pm.StackLength, pm.RAMSize)
	}
	return nil
}

// SectionSizes gives the image size of each loaded or zeroed output section,
// keyed by section name. Sections absent from the map resolve to length
// zero. Heap and stack take no size here; they are sized by the platform
// map alone.
type SectionSizes map[string]uint32

// Validate rejects size entries for section names no region in the table
// claims, and for the reserved tail regions.
func (s SectionSizes) Validate() error {
	for name := range s {
		found := false
		for _, r := range Table {
			if r.Name == name {
				found = true
				break
			}
		}
		if !found || name == SectionHeap || name == SectionStack {
			return fmt.Errorf("%w: %q", ErrUnknownSection, name)
		}
	}
	return nil
}
