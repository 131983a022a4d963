package otadata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// State describes whether the currently selected application slot is trusted
// to keep booting. Values follow ESP-IDF's image states.
type State uint32

const (
	// StateNew marks a freshly written image that has never booted
	StateNew State = 0x0

	// StatePendingVerify marks an image that booted but is unconfirmed
	StatePendingVerify State = 0x1

	// StateValid marks an image confirmed as working
	StateValid State = 0x2

	// StateInvalid marks an image explicitly rejected
	StateInvalid State = 0x3

	// StateAborted marks an image the bootloader gave up on
	StateAborted State = 0x4

	// StateUndefined is the erased-flash value; the slot state is unknown
	StateUndefined State = 0xFFFFFFFF
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StatePendingVerify:
		return "pending-verify"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	case StateAborted:
		return "aborted"
	case StateUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("unknown(0x%X)", uint32(s))
	}
}

// RecordSize is the encoded size of a Record, checksum included.
const RecordSize = 32

const payloadSize = RecordSize - 4

// Record is the OTA metadata record. Sequence counts completed updates; its
// parity selects the active application slot. Reserved is kept verbatim for
// bootloader use (image digest on some bootloaders) and is all-ones when no
// digest is recorded.
type Record struct {
	Sequence uint32
	State    State
	Reserved [20]byte
}

// IsValid reports whether the selected slot has been confirmed as working.
func (r Record) IsValid() bool { return r.State == StateValid }

// Slot returns the application slot selected by the sequence number:
// (sequence-1) mod 2, so consecutive updates ping-pong between the two
// slots. Sequence must be at least 1.
func (r Record) Slot() (int, error) {
	if r.Sequence == 0 {
		return 0, errors.New("otadata: sequence is zero, no update slot selected")
	}
	return int((r.Sequence - 1) % 2), nil
}

// ErrBadChecksum indicates that a record's CRC trailer did not match its
// payload.
var ErrBadChecksum = errors.New("otadata: record checksum mismatch")

// Encode serializes the record: sequence (LE), state (LE), reserved bytes,
// then a CRC-32 (IEEE) of the preceding 28 bytes, little-endian.
func (r Record) Encode() [RecordSize]byte {
	var buf [RecordSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], r.Sequence)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(r.State))
	copy(buf[8:8+len(r.Reserved)], r.Reserved[:])
	binary.LittleEndian.PutUint32(buf[payloadSize:], crc32.ChecksumIEEE(buf[:payloadSize]))
	return buf
}

// Decode deserializes and integrity-checks a record.
func Decode(buf [RecordSize]byte) (Record, error) {
	want := binary.LittleEndian.Uint32(buf[payloadSize:])
	if crc32.ChecksumIEEE(buf[:payloadSize]) != want {
		return Record{}, ErrBadChecksum
	}
	var r Record
	r.Sequence = binary.LittleEndian.Uint32(buf[0:4])
	r.State = State(binary.LittleEndian.Uint32(buf[4:8]))
	copy(r.Reserved[:], buf[8:8+len(r.Reserved)])
	return r, nil
}
