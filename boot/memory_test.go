package boot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshmaas/bootkit/internal/layout"
)

func TestMemory_SliceBounds(t *testing.T) {
	mem, err := NewMemory(testPlatform())
	require.NoError(t, err)
	defer mem.Close() //nolint:errcheck

	base := mem.Base()
	b, err := mem.Slice(base, base+16)
	require.NoError(t, err)
	assert.Len(t, b, 16)

	_, err = mem.Slice(base-1, base+16)
	require.Error(t, err, "below RAM")
	_, err = mem.Slice(base, base+mem.Size()+1)
	require.Error(t, err, "past RAM")
	_, err = mem.Slice(base+16, base)
	require.Error(t, err, "inverted range")
}

func TestMemory_SliceAliasesRAM(t *testing.T) {
	mem, err := NewMemory(testPlatform())
	require.NoError(t, err)
	defer mem.Close() //nolint:errcheck

	addr := mem.Base() + 0x100
	b, err := mem.Slice(addr, addr+4)
	require.NoError(t, err)
	layout.PutU32(b, 0, 0xCAFEF00D)

	again, err := mem.Slice(addr, addr+4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEF00D), layout.ReadU32(again, 0))
}

func TestMemory_FillAndClose(t *testing.T) {
	mem, err := NewMemory(testPlatform())
	require.NoError(t, err)

	mem.Fill(0xEE)
	b, err := mem.Slice(mem.Base(), mem.Base()+8)
	require.NoError(t, err)
	for _, v := range b {
		require.Equal(t, byte(0xEE), v)
	}

	require.NoError(t, mem.Close())
	require.NoError(t, mem.Close(), "double close is a no-op")
}

func TestMemory_RejectsBadPlatform(t *testing.T) {
	pm := testPlatform()
	pm.RAMSize = 0
	_, err := NewMemory(pm)
	require.Error(t, err)
}

func TestCurrent_BeforeBoot(t *testing.T) {
	// Other tests may have installed a context; this only checks the
	// error path wiring on a fresh install slot.
	if c := current.Load(); c == nil {
		_, err := Current()
		require.ErrorIs(t, err, ErrNotBooted)
	}
}
