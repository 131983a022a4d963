package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonathanBrouwer/go-esp-ota/flash"
)

func newTableFlash(t *testing.T, entries []Descriptor) *flash.Mem {
	t.Helper()
	dev := flash.NewMem(0x10000, 0x1000)
	require.NoError(t, DefaultTable().Write(dev, entries))
	return dev
}

func collect(t *testing.T, dev flash.Flash) []Descriptor {
	t.Helper()
	var got []Descriptor
	it := DefaultTable().Iter(dev)
	for it.Next() {
		got = append(got, it.Entry())
	}
	require.NoError(t, it.Err())
	return got
}

func TestTableRoundTrip(t *testing.T) {
	entries := []Descriptor{
		{Type: TypeApp, SubType: SubTypeOTA0, Offset: 0x10000, Size: 0x100000, Label: "ota_0"},
		{Type: TypeApp, SubType: SubTypeOTA1, Offset: 0x110000, Size: 0x100000, Label: "ota_1"},
		{Type: TypeData, SubType: SubTypeDataOTA, Offset: 0xD000, Size: 0x2000, Label: "otadata"},
	}
	dev := newTableFlash(t, entries)
	assert.Equal(t, entries, collect(t, dev))
}

func TestIterSkipsChecksumEntry(t *testing.T) {
	dev := newTableFlash(t, []Descriptor{
		{Type: TypeApp, SubType: SubTypeOTA0, Offset: 0x10000, Size: 0x1000, Label: "ota_0"},
	})

	// Place an md5 checksum entry at index 1 and a real entry at index 2,
	// the way idf-generated tables lay them out.
	md5Entry := make([]byte, EntrySize)
	md5Entry[0], md5Entry[1] = 0xEB, 0xEB
	require.NoError(t, dev.Write(DefaultTableOffset+EntrySize, md5Entry))

	extra := Descriptor{Type: TypeData, SubType: SubTypeDataOTA, Offset: 0xD000, Size: 0x2000, Label: "otadata"}
	raw, err := encodeEntry(extra)
	require.NoError(t, err)
	require.NoError(t, dev.Write(DefaultTableOffset+2*EntrySize, raw[:]))

	got := collect(t, dev)
	require.Len(t, got, 2)
	assert.Equal(t, "ota_0", got[0].Label)
	assert.Equal(t, extra, got[1])
}

func TestIterStopsAtTerminator(t *testing.T) {
	dev := newTableFlash(t, nil)
	assert.Empty(t, collect(t, dev))
}

func TestIterBadMagic(t *testing.T) {
	dev := newTableFlash(t, []Descriptor{
		{Type: TypeApp, SubType: SubTypeOTA0, Offset: 0x10000, Size: 0x1000, Label: "ota_0"},
	})
	// Damage the first entry's magic without erasing it.
	require.NoError(t, dev.Write(DefaultTableOffset, []byte{0x00}))

	it := DefaultTable().Iter(dev)
	assert.False(t, it.Next())
	assert.ErrorContains(t, it.Err(), "bad magic")
}

func TestWriteRejectsLongLabel(t *testing.T) {
	dev := flash.NewMem(0x10000, 0x1000)
	err := DefaultTable().Write(dev, []Descriptor{
		{Type: TypeApp, SubType: SubTypeOTA0, Label: "a-label-that-is-way-too-long"},
	})
	assert.Error(t, err)
}

func TestAppSlot(t *testing.T) {
	assert.Equal(t, SubTypeOTA0, AppSlot(0))
	assert.Equal(t, SubTypeOTA1, AppSlot(1))
	assert.Panics(t, func() { AppSlot(2) })
}

func TestDescriptorSlot(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		slot int
		ok   bool
	}{
		{"ota_0", Descriptor{Type: TypeApp, SubType: SubTypeOTA0}, 0, true},
		{"ota_1", Descriptor{Type: TypeApp, SubType: SubTypeOTA1}, 1, true},
		{"factory", Descriptor{Type: TypeApp, SubType: SubTypeFactory}, 0, false},
		{"data", Descriptor{Type: TypeData, SubType: SubTypeDataOTA}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, ok := tt.desc.Slot()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.slot, slot)
			}
		})
	}
}
