package otadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	rec := Record{Sequence: 5, State: StateValid}
	for i := range rec.Reserved {
		rec.Reserved[i] = 0xAA
	}

	got, err := Decode(rec.Encode())
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestDecodeRejectsCorruption(t *testing.T) {
	rec := Record{Sequence: 7, State: StatePendingVerify}
	buf := rec.Encode()

	// Any single flipped byte must fail the integrity check, whether it
	// is in the payload or in the checksum trailer itself.
	for _, idx := range []int{0, 4, 8, 27, 28, 31} {
		corrupted := buf
		corrupted[idx] ^= 0xFF
		_, err := Decode(corrupted)
		assert.ErrorIs(t, err, ErrBadChecksum, "byte %d", idx)
	}
}

func TestDecodeErasedFlash(t *testing.T) {
	var buf [RecordSize]byte
	for i := range buf {
		buf[i] = 0xFF
	}
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrBadChecksum)
}

func TestSlot(t *testing.T) {
	tests := []struct {
		sequence uint32
		slot     int
	}{
		{1, 0},
		{2, 1},
		{3, 0},
		{4, 1},
	}
	for _, tt := range tests {
		slot, err := Record{Sequence: tt.sequence}.Slot()
		require.NoError(t, err)
		assert.Equal(t, tt.slot, slot, "sequence %d", tt.sequence)
	}

	_, err := Record{Sequence: 0}.Slot()
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	for _, state := range []State{StateNew, StatePendingVerify, StateInvalid, StateAborted, StateUndefined} {
		assert.False(t, Record{State: state}.IsValid(), "state %s", state)
	}
	assert.True(t, Record{State: StateValid}.IsValid())
}
