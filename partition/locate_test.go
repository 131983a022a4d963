package partition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonathanBrouwer/go-esp-ota/flash"
)

var testEntries = []Descriptor{
	{Type: TypeApp, SubType: SubTypeOTA0, Offset: 0x10000, Size: 0x1000, Label: "ota_0"},
	{Type: TypeApp, SubType: SubTypeOTA1, Offset: 0x11000, Size: 0x1000, Label: "ota_1"},
	{Type: TypeData, SubType: SubTypeDataOTA, Offset: 0xD000, Size: 0x2000, Label: "otadata"},
}

func TestFindByType(t *testing.T) {
	dev := newTableFlash(t, testEntries)

	got, err := FindByType(dev, TypeApp, SubTypeOTA1)
	require.NoError(t, err)
	assert.Equal(t, testEntries[1], got)

	got, err = FindByType(dev, TypeData, SubTypeDataOTA)
	require.NoError(t, err)
	assert.Equal(t, testEntries[2], got)
}

func TestFindByName(t *testing.T) {
	dev := newTableFlash(t, testEntries)

	got, err := FindByName(dev, "ota_0")
	require.NoError(t, err)
	assert.Equal(t, testEntries[0], got)
}

func TestFindNotFound(t *testing.T) {
	dev := newTableFlash(t, testEntries[:2])

	_, err := FindByType(dev, TypeData, SubTypeDataOTA)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = FindByName(dev, "nvs")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindFoundTwice(t *testing.T) {
	dup := append([]Descriptor{}, testEntries...)
	dup = append(dup, Descriptor{Type: TypeApp, SubType: SubTypeOTA0, Offset: 0x20000, Size: 0x1000, Label: "ota_0_dup"})
	dev := newTableFlash(t, dup)

	_, err := FindByType(dev, TypeApp, SubTypeOTA0)
	assert.ErrorIs(t, err, ErrFoundTwice)
}

// brokenFlash fails every read, standing in for a dying storage device.
type brokenFlash struct {
	*flash.Mem
	err error
}

func (b *brokenFlash) Read(off uint32, p []byte) error {
	return &flash.OpError{Op: "read", Offset: off, Err: b.err}
}

func TestFindPropagatesStorageError(t *testing.T) {
	readErr := errors.New("bus timeout")
	dev := &brokenFlash{Mem: flash.NewMem(0x10000, 0x1000), err: readErr}

	_, err := FindByType(dev, TypeApp, SubTypeOTA0)
	require.ErrorIs(t, err, readErr)

	var opErr *flash.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "read", opErr.Op)
}
