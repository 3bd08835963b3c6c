package alloc

import "errors"

var (
	// ErrOutOfMemory indicates no free span within the heap region can
	// satisfy the request. The region never grows; this is the only
	// allocator condition returned as a normal failure value.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrZeroSize indicates a zero-byte allocation or free request.
	ErrZeroSize = errors.New("alloc: size must be non-zero")

	// ErrBadAlign indicates an alignment that is not a power of two.
	ErrBadAlign = errors.New("alloc: alignment must be a power of two")

	// ErrBadFree indicates a free of a span the allocator does not own:
	// out of bounds, misaligned, overlapping a free span, or double-freed.
	ErrBadFree = errors.New("alloc: bad free")

	// ErrBadBounds indicates allocator construction with bounds outside
	// the backing memory or with an inverted or misaligned range.
	ErrBadBounds = errors.New("alloc: bad heap bounds")
)
