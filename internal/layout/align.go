package layout

// Alignment utilities. Region boundaries and allocator charges are kept
// 8-byte aligned; the stack pointer additionally requires 8-byte alignment
// per the target's calling convention.

// AlignUp returns n rounded up to the next multiple of align. align must be
// a power of two.
func AlignUp(n, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}

// AlignUp8 returns n rounded up to the next 8-byte boundary.
//
// Example:
//
//	AlignUp8(1)  = 8
//	AlignUp8(8)  = 8
//	AlignUp8(9)  = 16
func AlignUp8(n uint32) uint32 {
	return AlignUp(n, BookkeepAlign)
}

// IsAligned reports whether n is a multiple of align. align must be a power
// of two.
func IsAligned(n, align uint32) bool {
	return n&(align-1) == 0
}

// IsPow2 reports whether align is a non-zero power of two.
func IsPow2(align uint32) bool {
	return align != 0 && align&(align-1) == 0
}
