package otadata

import (
	"errors"
	"fmt"

	"github.com/JonathanBrouwer/go-esp-ota/flash"
	"github.com/JonathanBrouwer/go-esp-ota/partition"
)

// ErrCorrupt indicates that neither redundant copy of the OTA metadata
// passed its integrity check. There is no further fallback; recovery is up
// to the caller.
var ErrCorrupt = errors.New("otadata: both copies corrupt")

// Read locates the OTA data partition and returns the stored record,
// preferring copy A and falling back to copy B.
func Read(f flash.Flash) (Record, error) {
	part, err := partition.FindByType(f, partition.TypeData, partition.SubTypeDataOTA)
	if err != nil {
		return Record{}, err
	}

	if rec, err := readCopy(f, part.Offset); err == nil {
		return rec, nil
	} else if !errors.Is(err, ErrBadChecksum) {
		return Record{}, err
	}

	rec, err := readCopy(f, part.Offset+f.BlockSize())
	if errors.Is(err, ErrBadChecksum) {
		return Record{}, ErrCorrupt
	}
	return rec, err
}

// Write locates the OTA data partition and persists the record to both
// copies, copy A first. Each copy's block is erased before the rewrite
// because the medium only clears bits at erase granularity. If power is
// lost between the copies, the next Read recovers from whichever copy
// remained intact.
func Write(f flash.Flash, rec Record) error {
	part, err := partition.FindByType(f, partition.TypeData, partition.SubTypeDataOTA)
	if err != nil {
		return err
	}

	buf := rec.Encode()
	bs := f.BlockSize()
	for copyIdx, off := range [2]uint32{part.Offset, part.Offset + bs} {
		if err := f.Erase(off, off+bs); err != nil {
			return fmt.Errorf("otadata: erase copy %d: %w", copyIdx, err)
		}
		if err := f.Write(off, buf[:]); err != nil {
			return fmt.Errorf("otadata: write copy %d: %w", copyIdx, err)
		}
	}
	return nil
}

func readCopy(f flash.Flash, off uint32) (Record, error) {
	var buf [RecordSize]byte
	if err := f.Read(off, buf[:]); err != nil {
		return Record{}, err
	}
	return Decode(buf)
}
