package flash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStartsErased(t *testing.T) {
	dev := NewMem(0x2000, 0x1000)
	buf := make([]byte, 16)
	require.NoError(t, dev.Read(0x1000, buf))
	for _, b := range buf {
		assert.Equal(t, byte(0xFF), b)
	}
}

func TestMemWriteOnlyClearsBits(t *testing.T) {
	dev := NewMem(0x1000, 0x1000)

	require.NoError(t, dev.Write(0, []byte{0xF0}))
	require.NoError(t, dev.Write(0, []byte{0x0F}))

	buf := make([]byte, 1)
	require.NoError(t, dev.Read(0, buf))
	assert.Equal(t, byte(0x00), buf[0], "overlapping writes AND together")
}

func TestMemEraseRestoresBits(t *testing.T) {
	dev := NewMem(0x2000, 0x1000)
	require.NoError(t, dev.Write(0x1000, []byte{0x00, 0x12}))
	require.NoError(t, dev.Erase(0x1000, 0x2000))

	buf := make([]byte, 2)
	require.NoError(t, dev.Read(0x1000, buf))
	assert.Equal(t, []byte{0xFF, 0xFF}, buf)
}

func TestMemEraseAlignment(t *testing.T) {
	dev := NewMem(0x2000, 0x1000)
	err := dev.Erase(0x800, 0x1000)
	require.ErrorIs(t, err, ErrUnalignedErase)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "erase", opErr.Op)
}

func TestMemOutOfBounds(t *testing.T) {
	dev := NewMem(0x1000, 0x1000)

	assert.ErrorIs(t, dev.Read(0xFFF, make([]byte, 2)), ErrOutOfBounds)
	assert.ErrorIs(t, dev.Write(0x1000, []byte{0}), ErrOutOfBounds)
	assert.ErrorIs(t, dev.Erase(0x1000, 0x2000), ErrOutOfBounds)
}
