package layout

// Section names for the fixed region order. The cold header block always
// comes first; heap and stack share the tail of addressable RAM.
const (
	SectionCold   = ".cold"
	SectionBoot   = ".boot"
	SectionText   = ".text"
	SectionROData = ".rodata"
	SectionSData  = ".sdata"
	SectionSData2 = ".sdata2"
	SectionData   = ".data"
	SectionTData  = ".tdata"
	SectionFixup  = ".fixup"
	SectionExTab  = ".extab"
	SectionExIdx  = ".exidx"
	SectionBSS    = ".bss"
	SectionSBSS   = ".sbss"
	SectionSBSS2  = ".sbss2"
	SectionTBSS   = ".tbss"
	SectionHeap   = ".heap"
	SectionStack  = ".stack"
)

const (
	// ColdHeaderOffset is the offset of the cold header within the code
	// region. It is always zero: the header is the first thing the uploader
	// reads from a flashed image.
	ColdHeaderOffset = 0

	// ColdHeaderSize is the total size of the cold header block, magic plus
	// reserved pad. The uploader compares this block byte-for-byte to decide
	// between a hot relink and a full reflash, so its size, offset, and
	// content are a compatibility surface and must never change.
	ColdHeaderSize = 0x20

	// ColdMagic is the sentinel value at offset 0 of the cold header,
	// little-endian "XVX5".
	ColdMagic uint32 = 0x35585658

	// WordSize is the natural word size of the 32-bit target.
	WordSize = 4

	// BookkeepAlign is the allocator's bookkeeping granularity. Every
	// allocation charge is rounded up to this many bytes.
	BookkeepAlign = 8

	// StackAlign is the stack alignment required by the target's calling
	// convention.
	StackAlign = 8

	// FixupEntrySize is the size of one fix-up table entry: a single word
	// naming a site to be rebased at startup.
	FixupEntrySize = WordSize
)

// Symbol names exported by the layout. External tooling (the uploader, the
// host-side linker wrapper) reads these by name, never by address.
const (
	SymColdStart   = "__cold_start"
	SymBootStart   = "__boot_start"
	SymTextStart   = "__text_start"
	SymTextEnd     = "__text_end"
	SymRODataStart = "__rodata_start"
	SymRODataEnd   = "__rodata_end"
	SymSDataStart  = "__sdata_start"
	SymSDataEnd    = "__sdata_end"
	SymSData2Start = "__sdata2_start"
	SymSData2End   = "__sdata2_end"
	SymDataStart   = "__data_start"
	SymDataEnd     = "__data_end"
	SymTDataStart  = "__tdata_start"
	SymTDataEnd    = "__tdata_end"
	SymFixupStart  = "__fixup_start"
	SymFixupEnd    = "__fixup_end"
	SymExTabStart  = "__extab_start"
	SymExTabEnd    = "__extab_end"
	SymExIdxStart  = "__exidx_start"
	SymExIdxEnd    = "__exidx_end"
	SymBSSStart    = "__bss_start"
	SymBSSEnd      = "__bss_end"
	SymSBSSStart   = "__sbss_start"
	SymSBSSEnd     = "__sbss_end"
	SymSBSS2Start  = "__sbss2_start"
	SymSBSS2End    = "__sbss2_end"
	SymTBSSStart   = "__tbss_start"
	SymTBSSEnd     = "__tbss_end"
	SymHeapStart   = "__heap_start"
	SymHeapEnd     = "__heap_end"
	SymHeapLength  = "__heap_length"
	SymStackStart  = "__stack_start"
	SymStackEnd    = "__stack_end"
	SymStackLength = "__stack_length"
	SymImageEnd    = "__image_end"
)

// Aliases maps newlib-style symbol spellings to their canonical names, kept
// for toolchain compatibility. Resolution goes through Layout.Symbol.
var Aliases = map[string]string{
	"__bss_start__": SymBSSStart,
	"__bss_end__":   SymBSSEnd,
	"__end__":       SymHeapStart,
	"_end":          SymHeapStart,
	"end":           SymHeapStart,
	"__stack":       SymStackEnd,
}
