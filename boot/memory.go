package boot

import (
	"fmt"

	"github.com/joshmaas/bootkit/internal/layout"
)

// Memory models the controller's addressable RAM as one contiguous region
// at a fixed base address. On unix hosts the backing is an anonymous
// mapping (pages the OS hands back zeroed, like freshly powered RAM after
// the firmware's own clear); elsewhere it is a plain slice.
type Memory struct {
	ram     []byte
	base    uint32
	release func() error
}

// NewMemory reserves the RAM region described by the platform map.
func NewMemory(pm layout.PlatformMap) (*Memory, error) {
	if err := pm.Validate(); err != nil {
		return nil, err
	}
	ram, release, err := mapRAM(int(pm.RAMSize))
	if err != nil {
		return nil, fmt.Errorf("boot: reserving %d bytes of RAM: %w", pm.RAMSize, err)
	}
	return &Memory{ram: ram, base: pm.RAMBase, release: release}, nil
}

// Base returns the address of the first RAM byte.
func (m *Memory) Base() uint32 { return m.base }

// Size returns the RAM region length in bytes.
func (m *Memory) Size() uint32 { return uint32(len(m.ram)) }

// Bytes returns the whole RAM backing. The slice aliases the region.
func (m *Memory) Bytes() []byte { return m.ram }

// Slice returns the bytes backing addresses [start, end).
func (m *Memory) Slice(start, end uint32) ([]byte, error) {
	if start < m.base || end < start || uint64(end) > uint64(m.base)+uint64(len(m.ram)) {
		return nil, fmt.Errorf("boot: address range [0x%X, 0x%X) outside RAM [0x%X, 0x%X)",
			start, end, m.base, uint64(m.base)+uint64(len(m.ram)))
	}
	return m.ram[start-m.base : end-m.base], nil
}

// Fill sets every RAM byte to b. Startup makes no assumption about
// pre-existing contents; tests use Fill to model arbitrary power-on
// garbage.
func (m *Memory) Fill(b byte) {
	for i := range m.ram {
		m.ram[i] = b
	}
}

// Close releases the backing. Only tests and the host-side tooling call
// this; on the controller the region lives until power-off.
func (m *Memory) Close() error {
	if m.release == nil {
		return nil
	}
	release := m.release
	m.release = nil
	m.ram = nil
	return release()
}
