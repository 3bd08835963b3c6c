// Package layout describes the static partition of the controller's address
// space. The goal is to keep the region table declarative and symbol-driven,
// independent from the packages that consume it, so higher-level code (the
// startup sequencer, the allocator, external upload tooling) only ever deals
// in named symbols and never in raw literal addresses.
package layout

// Purpose tags a region with the kind of content it holds.
type Purpose uint8

const (
	// PurposeCode marks executable code regions.
	PurposeCode Purpose = iota
	// PurposeROData marks read-only data.
	PurposeROData
	// PurposeSmallData marks small-data regions that must sit within one
	// bounded displacement of the small-data base register.
	PurposeSmallData
	// PurposeData marks writable initialized data.
	PurposeData
	// PurposeTLS marks thread-local data (initialized or zeroed).
	PurposeTLS
	// PurposeTable marks fix-up and exception-unwind tables.
	PurposeTable
	// PurposeBSS marks zero-initialized data.
	PurposeBSS
	// PurposeHeap marks the heap region handed to the allocator.
	PurposeHeap
	// PurposeStack marks the downward-growing call stack region.
	PurposeStack
)

// String returns the lowercase tag name used in diagnostics.
func (p Purpose) String() string {
	switch p {
	case PurposeCode:
		return "code"
	case PurposeROData:
		return "rodata"
	case PurposeSmallData:
		return "smalldata"
	case PurposeData:
		return "data"
	case PurposeTLS:
		return "tls"
	case PurposeTable:
		return "table"
	case PurposeBSS:
		return "bss"
	case PurposeHeap:
		return "heap"
	case PurposeStack:
		return "stack"
	default:
		return "unknown"
	}
}

// LoadPolicy states whether a region carries initial content from the
// program image or merely reserves address space.
type LoadPolicy uint8

const (
	// LoadFromImage regions are populated by the uploader from the image.
	LoadFromImage LoadPolicy = iota
	// ReservedOnly regions occupy address space but carry no image content.
	// Anything reserved must be explicitly initialized before first use.
	ReservedOnly
)

// String returns the lowercase tag name used in diagnostics.
func (p LoadPolicy) String() string {
	switch p {
	case LoadFromImage:
		return "image"
	case ReservedOnly:
		return "reserved"
	default:
		return "unknown"
	}
}

// Region is one named output region in the fixed layout order.
//
// StartSym and EndSym are the exported boundary symbol names. Patterns lists
// the input-section name patterns this region claims; a trailing '*' matches
// any suffix. No pattern may be claimed by two regions.
type Region struct {
	Name     string
	StartSym string
	EndSym   string
	Purpose  Purpose
	Load     LoadPolicy
	Zeroed   bool // startup must zero the region byte-for-byte
	Patterns []string
}

// Extent is a region with its resolved [Start, End) addresses.
type Extent struct {
	Region Region
	Start  uint32
	End    uint32
}

// Len returns the resolved region length in bytes.
func (e Extent) Len() uint32 { return e.End - e.Start }

// Layout is the fully resolved address-space partition for one platform map
// plus one set of section sizes. It is immutable once built.
type Layout struct {
	Platform PlatformMap
	Extents  []Extent

	syms map[string]uint32
}

// Symbol resolves a boundary symbol (or a registered toolchain alias) to its
// address. The second return is false when the symbol is unknown.
func (l *Layout) Symbol(name string) (uint32, bool) {
	if canon, ok := Aliases[name]; ok {
		name = canon
	}
	v, ok := l.syms[name]
	return v, ok
}

// Symbols returns a copy of the resolved symbol table, canonical names only.
func (l *Layout) Symbols() map[string]uint32 {
	out := make(map[string]uint32, len(l.syms))
	for k, v := range l.syms {
		out[k] = v
	}
	return out
}

// Extent returns the resolved extent of the named region.
func (l *Layout) Extent(name string) (Extent, bool) {
	for _, e := range l.Extents {
		if e.Region.Name == name {
			return e, true
		}
	}
	return Extent{}, false
}

// HeapBounds returns the [start, end) addresses of the heap region. This is
// the only heap input the allocator may trust.
func (l *Layout) HeapBounds() (start, end uint32) {
	e, _ := l.Extent(SectionHeap)
	return e.Start, e.End
}

// StackBounds returns the [start, end) addresses of the stack region. The
// stack grows downward from End.
func (l *Layout) StackBounds() (start, end uint32) {
	e, _ := l.Extent(SectionStack)
	return e.Start, e.End
}

// StackTop returns the initial stack pointer value (top of the stack region).
func (l *Layout) StackTop() uint32 {
	_, end := l.StackBounds()
	return end
}

// ImageEnd returns the end-of-image marker: the first address past every
// link-placed region, which is also where the heap begins.
func (l *Layout) ImageEnd() uint32 {
	v := l.syms[SymImageEnd]
	return v
}

// ZeroExtents returns, in layout order, every reserved region that startup
// must zero before user code runs.
func (l *Layout) ZeroExtents() []Extent {
	var out []Extent
	for _, e := range l.Extents {
		if e.Region.Zeroed {
			out = append(out, e)
		}
	}
	return out
}

// ClaimedBy returns the name of the region whose patterns match the given
// input-section name, or "" when no region claims it. It reports an error
// through the second return if more than one region matches, which would be
// a defect in the region table.
func ClaimedBy(section string) (string, error) {
	var owner string
	for _, r := range Table {
		for _, p := range r.Patterns {
			if MatchPattern(p, section) {
				if owner != "" && owner != r.Name {
					return "", &PatternClashError{Section: section, First: owner, Second: r.Name}
				}
				owner = r.Name
				break
			}
		}
	}
	return owner, nil
}

// MatchPattern reports whether an input-section name matches a pattern.
// A trailing '*' matches any suffix; otherwise the match is exact.
func MatchPattern(pattern, section string) bool {
	if n := len(pattern); n > 0 && pattern[n-1] == '*' {
		prefix := pattern[:n-1]
		return len(section) >= len(prefix) && section[:len(prefix)] == prefix
	}
	return pattern == section
}
