package layout

// Table is the fixed, required region order. Ordering here is a correctness
// constraint, not cosmetic:
//
//   - The cold header block occupies the first 0x20 bytes so the uploader
//     can find it at offset 0 of the code region.
//   - Both small-data regions sit immediately after read-only data because
//     the target addresses them through one bounded displacement of the
//     small-data base register.
//   - Heap and stack come last and share the tail of addressable RAM, sized
//     by the platform map rather than by image content.
//
// The two small-bss regions (.sbss, .sbss2) are genuinely distinct and claim
// disjoint input-section patterns. An earlier descriptor this table replaces
// routed ".sbss2" input sections into the ".sbss" output region; that was a
// defect, not a feature, and ClaimedBy rejects any such double claim.
var Table = []Region{
	{
		Name:     SectionCold,
		StartSym: SymColdStart,
		Purpose:  PurposeCode,
		Load:     LoadFromImage,
		Patterns: []string{".cold"},
	},
	{
		Name:     SectionBoot,
		StartSym: SymBootStart,
		Purpose:  PurposeCode,
		Load:     LoadFromImage,
		Patterns: []string{".boot"},
	},
	{
		Name:     SectionText,
		StartSym: SymTextStart,
		EndSym:   SymTextEnd,
		Purpose:  PurposeCode,
		Load:     LoadFromImage,
		Patterns: []string{".text", ".text.*", ".gnu.linkonce.t.*"},
	},
	{
		Name:     SectionROData,
		StartSym: SymRODataStart,
		EndSym:   SymRODataEnd,
		Purpose:  PurposeROData,
		Load:     LoadFromImage,
		Patterns: []string{".rodata", ".rodata.*"},
	},
	{
		Name:     SectionSData,
		StartSym: SymSDataStart,
		EndSym:   SymSDataEnd,
		Purpose:  PurposeSmallData,
		Load:     LoadFromImage,
		Patterns: []string{".sdata", ".sdata.*"},
	},
	{
		Name:     SectionSData2,
		StartSym: SymSData2Start,
		EndSym:   SymSData2End,
		Purpose:  PurposeSmallData,
		Load:     LoadFromImage,
		Patterns: []string{".sdata2", ".sdata2.*"},
	},
	{
		Name:     SectionData,
		StartSym: SymDataStart,
		EndSym:   SymDataEnd,
		Purpose:  PurposeData,
		Load:     LoadFromImage,
		Patterns: []string{".data", ".data.*", ".gnu.linkonce.d.*"},
	},
	{
		Name:     SectionTData,
		StartSym: SymTDataStart,
		EndSym:   SymTDataEnd,
		Purpose:  PurposeTLS,
		Load:     LoadFromImage,
		Patterns: []string{".tdata", ".tdata.*"},
	},
	{
		Name:     SectionFixup,
		StartSym: SymFixupStart,
		EndSym:   SymFixupEnd,
		Purpose:  PurposeTable,
		Load:     LoadFromImage,
		Patterns: []string{".fixup"},
	},
	{
		Name:     SectionExTab,
		StartSym: SymExTabStart,
		EndSym:   SymExTabEnd,
		Purpose:  PurposeTable,
		Load:     LoadFromImage,
		Patterns: []string{".ARM.extab", ".ARM.extab.*"},
	},
	{
		Name:     SectionExIdx,
		StartSym: SymExIdxStart,
		EndSym:   SymExIdxEnd,
		Purpose:  PurposeTable,
		Load:     LoadFromImage,
		Patterns: []string{".ARM.exidx", ".ARM.exidx.*"},
	},
	{
		Name:     SectionBSS,
		StartSym: SymBSSStart,
		EndSym:   SymBSSEnd,
		Purpose:  PurposeBSS,
		Load:     ReservedOnly,
		Zeroed:   true,
		Patterns: []string{".bss", ".bss.*", "COMMON"},
	},
	{
		Name:     SectionSBSS,
		StartSym: SymSBSSStart,
		EndSym:   SymSBSSEnd,
		Purpose:  PurposeBSS,
		Load:     ReservedOnly,
		Zeroed:   true,
		Patterns: []string{".sbss", ".sbss.*"},
	},
	{
		Name:     SectionSBSS2,
		StartSym: SymSBSS2Start,
		EndSym:   SymSBSS2End,
		Purpose:  PurposeBSS,
		Load:     ReservedOnly,
		Zeroed:   true,
		Patterns: []string{".sbss2", ".sbss2.*"},
	},
	{
		Name:     SectionTBSS,
		StartSym: SymTBSSStart,
		EndSym:   SymTBSSEnd,
		Purpose:  PurposeTLS,
		Load:     ReservedOnly,
		Zeroed:   true,
		Patterns: []string{".tbss", ".tbss.*"},
	},
	{
		Name:     SectionHeap,
		StartSym: SymHeapStart,
		EndSym:   SymHeapEnd,
		Purpose:  PurposeHeap,
		Load:     ReservedOnly,
	},
	{
		Name:     SectionStack,
		StartSym: SymStackStart,
		EndSym:   SymStackEnd,
		Purpose:  PurposeStack,
		Load:     ReservedOnly,
	},
}
