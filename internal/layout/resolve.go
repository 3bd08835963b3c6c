package layout

import "fmt"

// Resolve builds the concrete address-space partition for a platform map and
// a set of section sizes. Every region in Table is placed in order starting
// at the RAM base; the heap begins where the image ends and the stack hangs
// from the top of RAM. Resolve validates the result before returning it, so
// a non-nil Layout always satisfies the ordering, overlap, and alignment
// invariants.
func Resolve(pm PlatformMap, sizes SectionSizes) (*Layout, error) {
	if err := pm.Validate(); err != nil {
		return nil, err
	}
	if err := sizes.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateTable(); err != nil {
		return nil, err
	}

	l := &Layout{
		Platform: pm,
		Extents:  make([]Extent, 0, len(Table)),
		syms:     make(map[string]uint32, 2*len(Table)+4),
	}

	stackEnd := pm.RAMBase + pm.RAMSize
	stackStart := stackEnd - pm.StackLength

	cursor := pm.RAMBase
	for _, r := range Table {
		var start, end uint32
		switch r.Name {
		case SectionHeap:
			start = cursor
			if pm.HeapLength == HeapFill {
				end = stackStart
			} else {
				end = start + pm.HeapLength
			}
			if end < start || end > stackStart {
				return nil, fmt.Errorf("%w: heap [0x%X, 0x%X) vs stack base 0x%X",
					ErrNoRoom, start, end, stackStart)
			}
			l.syms[SymHeapLength] = end - start
		case SectionStack:
			start = stackEnd - pm.StackLength
			end = stackEnd
			l.syms[SymStackLength] = pm.StackLength
		default:
			size := sizes[r.Name]
			if r.Name == SectionCold {
				// The cold header block is fixed; image content cannot
				// change its size.
				size = ColdHeaderSize
			}
			start = cursor
			end = start + AlignUp8(size)
			if end < start {
				return nil, fmt.Errorf("%w: section %s wraps", ErrNoRoom, r.Name)
			}
			cursor = end
			if r.Name == SectionTBSS {
				l.syms[SymImageEnd] = end
			}
		}

		l.Extents = append(l.Extents, Extent{Region: r, Start: start, End: end})
		if r.StartSym != "" {
			l.syms[r.StartSym] = start
		}
		if r.EndSym != "" {
			l.syms[r.EndSym] = end
		}
	}

	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// validate checks the resolved extents against the layout invariants:
// fixed order, contiguity through the image, no overlap, small-data
// adjacency to read-only data, and stack alignment.
func (l *Layout) validate() error {
	for _, sym := range requiredSymbols {
		if _, ok := l.syms[sym]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingSymbol, sym)
		}
	}

	for i := 1; i < len(l.Extents); i++ {
		prev, cur := l.Extents[i-1], l.Extents[i]
		if cur.Start < prev.End {
			return fmt.Errorf("%w: %s [0x%X, 0x%X) vs %s [0x%X, 0x%X)",
				ErrRegionOverlap,
				prev.Region.Name, prev.Start, prev.End,
				cur.Region.Name, cur.Start, cur.End)
		}
		// Everything up to and including the heap is contiguous. Only the
		// gap between heap end and stack base is deliberate slack.
		if cur.Region.Name != SectionStack && cur.Start != prev.End {
			return fmt.Errorf("%w: gap before %s (0x%X != 0x%X)",
				ErrRegionOrder, cur.Region.Name, cur.Start, prev.End)
		}
	}

	// Small data must sit immediately after read-only data so both stay
	// within one displacement of the small-data base register.
	ro, _ := l.Extent(SectionROData)
	sd, _ := l.Extent(SectionSData)
	if sd.Start != ro.End {
		return fmt.Errorf("%w: %s must follow %s directly",
			ErrRegionOrder, SectionSData, SectionROData)
	}

	ss, se := l.StackBounds()
	if !IsAligned(ss, StackAlign) || !IsAligned(se, StackAlign) {
		return fmt.Errorf("%w: [0x%X, 0x%X)", ErrUnalignedStack, ss, se)
	}

	hs, he := l.HeapBounds()
	if he < hs {
		return fmt.Errorf("%w: heap bounds inverted [0x%X, 0x%X)", ErrNoRoom, hs, he)
	}
	return nil
}

// requiredSymbols is the bit-exact symbol contract consumed by startup code
// and external tooling. Resolution fails fast when any is missing.
var requiredSymbols = []string{
	SymColdStart,
	SymTextStart, SymTextEnd,
	SymRODataStart, SymRODataEnd,
	SymSDataStart, SymSDataEnd,
	SymSData2Start, SymSData2End,
	SymDataStart, SymDataEnd,
	SymTDataStart, SymTDataEnd,
	SymFixupStart, SymFixupEnd,
	SymExTabStart, SymExTabEnd,
	SymExIdxStart, SymExIdxEnd,
	SymBSSStart, SymBSSEnd,
	SymSBSSStart, SymSBSSEnd,
	SymSBSS2Start, SymSBSS2End,
	SymTBSSStart, SymTBSSEnd,
	SymHeapStart, SymHeapEnd, SymHeapLength,
	SymStackStart, SymStackEnd, SymStackLength,
	SymImageEnd,
}

// SymbolNames returns the full symbol contract in its documented order.
func SymbolNames() []string {
	out := make([]string, len(requiredSymbols))
	copy(out, requiredSymbols)
	return out
}

// ValidateTable checks the static region table itself: no input-section
// pattern may be matchable by two output regions. Two patterns clash when
// they are equal, when an exact name matches the other's prefix, or when one
// prefix extends the other.
func ValidateTable() error {
	type pat struct {
		region  string
		pattern string
	}
	var pats []pat
	for _, r := range Table {
		for _, p := range r.Patterns {
			pats = append(pats, pat{region: r.Name, pattern: p})
		}
	}
	for i := 0; i < len(pats); i++ {
		for j := i + 1; j < len(pats); j++ {
			if pats[i].region == pats[j].region {
				continue
			}
			if patternsOverlap(pats[i].pattern, pats[j].pattern) {
				return &PatternClashError{
					Section: pats[i].pattern,
					First:   pats[i].region,
					Second:  pats[j].region,
				}
			}
		}
	}
	return nil
}

// patternsOverlap reports whether some input-section name could match both
// patterns.
func patternsOverlap(a, b string) bool {
	aw := len(a) > 0 && a[len(a)-1] == '*'
	bw := len(b) > 0 && b[len(b)-1] == '*'
	switch {
	case !aw && !bw:
		return a == b
	case aw && !bw:
		return MatchPattern(a, b)
	case !aw && bw:
		return MatchPattern(b, a)
	default:
		ap, bp := a[:len(a)-1], b[:len(b)-1]
		if len(ap) > len(bp) {
			ap, bp = bp, ap
		}
		return bp[:len(ap)] == ap
	}
}
