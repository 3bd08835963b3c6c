package layout

import "encoding/binary"

// Little-endian encoding helpers for words in the modeled address space.
// The standard library implementation inlines well; there is no need for
// unsafe tricks here.

// PutU32 writes a uint32 at the given offset, little-endian.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// ReadU32 reads a uint32 at the given offset, little-endian.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// PutU16 writes a uint16 at the given offset, little-endian.
func PutU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

// ReadU16 reads a uint16 at the given offset, little-endian.
func ReadU16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}
