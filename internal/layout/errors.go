package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSymbol indicates a required boundary symbol was absent.
	ErrMissingSymbol = errors.New("layout: missing required symbol")
	// ErrRegionOrder indicates the resolved regions violate the fixed order.
	ErrRegionOrder = errors.New("layout: region order violated")
	// ErrRegionOverlap indicates two resolved regions overlap.
	ErrRegionOverlap = errors.New("layout: regions overlap")
	// ErrUnalignedStack indicates the stack bounds are not 8-byte aligned.
	ErrUnalignedStack = errors.New("layout: stack not 8-byte aligned")
	// ErrNoRoom indicates the platform map cannot fit the image plus the
	// configured heap and stack lengths.
	ErrNoRoom = errors.New("layout: image does not fit platform map")
	// ErrUnknownSection indicates a section size was supplied for a section
	// name no region claims.
	ErrUnknownSection = errors.New("layout: unknown section")
)

// PatternClashError reports an input-section name claimed by two output
// regions. This is always a defect in the region table.
type PatternClashError struct {
	Section string
	First   string
	Second  string
}

func (e *PatternClashError) Error() string {
	return fmt.Sprintf("layout: input section %q claimed by both %s and %s",
		e.Section, e.First, e.Second)
}
