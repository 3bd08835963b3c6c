package boot

import (
	"errors"
	"fmt"

	"github.com/joshmaas/bootkit/internal/layout"
)

// ErrBootFault indicates cold-header validation failed on a required fresh
// boot. It is fatal: the sequencer halts before any user code runs.
var ErrBootFault = errors.New("boot: cold header validation failed")

// Cold header word offsets within the 0x20-byte block. Everything past the
// four words is reserved pad and must be zero.
const (
	coldMagicOffset   = 0x00
	coldTypeOffset    = 0x04
	coldOwnerOffset   = 0x08
	coldOptionsOffset = 0x0C
	coldPadOffset     = 0x10
)

// ColdHeader is the fixed-size sentinel at offset 0 of the code region.
//
// The external uploader compares this block byte-for-byte against a
// previously flashed image to decide between a hot relink and a full
// reflash. Corrupting it does not fail loudly: it silently degrades every
// upload to a full reflash. The block must therefore never be mutated once
// written, and its size, offset, and magic are frozen compatibility
// surface.
type ColdHeader struct {
	Magic   uint32
	Type    uint32
	Owner   uint32
	Options uint32
}

// DefaultColdHeader is the header written into freshly produced images:
// a user program owned by the partner slot, no options.
var DefaultColdHeader = ColdHeader{
	Magic: layout.ColdMagic,
	Type:  1,
	Owner: 2,
}

// ParseColdHeader decodes the header block. It does not validate; parse
// then Validate mirrors how the reset path consumes it.
func ParseColdHeader(b []byte) (ColdHeader, error) {
	if len(b) < layout.ColdHeaderSize {
		return ColdHeader{}, fmt.Errorf("%w: truncated block (%d bytes)", ErrBootFault, len(b))
	}
	return ColdHeader{
		Magic:   layout.ReadU32(b, coldMagicOffset),
		Type:    layout.ReadU32(b, coldTypeOffset),
		Owner:   layout.ReadU32(b, coldOwnerOffset),
		Options: layout.ReadU32(b, coldOptionsOffset),
	}, nil
}

// Validate checks the sentinel. Only an exact magic match proceeds past
// boot validation; any other byte pattern is a BootFault.
func (h ColdHeader) Validate() error {
	if h.Magic != layout.ColdMagic {
		return fmt.Errorf("%w: magic 0x%08X, want 0x%08X", ErrBootFault, h.Magic, layout.ColdMagic)
	}
	return nil
}

// WriteColdHeader renders the header block into b, zeroing the reserved
// pad. b must hold the full 0x20-byte block.
func WriteColdHeader(b []byte, h ColdHeader) error {
	if len(b) < layout.ColdHeaderSize {
		return fmt.Errorf("boot: header block too small (%d bytes)", len(b))
	}
	layout.PutU32(b, coldMagicOffset, h.Magic)
	layout.PutU32(b, coldTypeOffset, h.Type)
	layout.PutU32(b, coldOwnerOffset, h.Owner)
	layout.PutU32(b, coldOptionsOffset, h.Options)
	for i := coldPadOffset; i < layout.ColdHeaderSize; i++ {
		b[i] = 0
	}
	return nil
}

// InstallColdHeader writes the header into the cold region of the modeled
// memory, as the uploader would when flashing an image.
func InstallColdHeader(mem *Memory, lay *layout.Layout, h ColdHeader) error {
	e, ok := lay.Extent(layout.SectionCold)
	if !ok {
		return fmt.Errorf("%w: %s", layout.ErrMissingSymbol, layout.SectionCold)
	}
	b, err := mem.Slice(e.Start, e.End)
	if err != nil {
		return err
	}
	return WriteColdHeader(b, h)
}

// ColdChecksum is the XOR of the block's eight words. The boot tests use
// it to confirm the block survives a boot byte-identical; the uploader
// uses the same fold when summarizing an image.
func ColdChecksum(b []byte) uint32 {
	var sum uint32
	for off := 0; off+layout.WordSize <= layout.ColdHeaderSize && off+layout.WordSize <= len(b); off += layout.WordSize {
		sum ^= layout.ReadU32(b, off)
	}
	return sum
}
