package flash

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCreateAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")

	dev, err := CreateFile(path, 0x4000, 0x1000)
	require.NoError(t, err)
	require.NoError(t, dev.Write(0x2000, []byte{0x12, 0x34}))
	require.NoError(t, dev.Close())

	dev, err = OpenFile(path, 0x1000)
	require.NoError(t, err)
	defer dev.Close()

	assert.Equal(t, uint32(0x4000), dev.Capacity())

	buf := make([]byte, 3)
	require.NoError(t, dev.Read(0x2000, buf))
	assert.Equal(t, []byte{0x12, 0x34, 0xFF}, buf)
}

func TestFileNorSemantics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")
	dev, err := CreateFile(path, 0x2000, 0x1000)
	require.NoError(t, err)
	defer dev.Close()

	require.NoError(t, dev.Write(0, []byte{0xF0}))
	require.NoError(t, dev.Write(0, []byte{0x0F}))
	buf := make([]byte, 1)
	require.NoError(t, dev.Read(0, buf))
	assert.Equal(t, byte(0x00), buf[0])

	require.NoError(t, dev.Erase(0, 0x1000))
	require.NoError(t, dev.Read(0, buf))
	assert.Equal(t, byte(0xFF), buf[0])
}

func TestFileRejectsUnalignedSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")
	dev, err := CreateFile(path, 0x2000, 0x1000)
	require.NoError(t, err)
	require.NoError(t, dev.Close())

	_, err = OpenFile(path, 0x1800)
	assert.Error(t, err)
}
