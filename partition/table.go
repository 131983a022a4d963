package partition

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/JonathanBrouwer/go-esp-ota/flash"
)

// Binary table format constants.
const (
	// EntrySize is the size of one table entry in bytes
	EntrySize = 32

	// MaxEntries bounds a table scan; the table region is 0xC00 bytes
	MaxEntries = 95

	// DefaultTableOffset is where the bootloader expects the table
	DefaultTableOffset = 0x8000

	labelSize = 16
)

var (
	entryMagic    = [2]byte{0xAA, 0x50}
	checksumMagic = [2]byte{0xEB, 0xEB}
)

// Table identifies a partition table on flash.
type Table struct {
	// Offset is the byte offset of the first entry
	Offset uint32
}

// DefaultTable returns the table at the conventional offset 0x8000.
func DefaultTable() Table {
	return Table{Offset: DefaultTableOffset}
}

// Iter begins a scan of the table. Entries are decoded one at a time so a
// single damaged entry surfaces as an error without hiding earlier ones.
func (t Table) Iter(f flash.Flash) *Iter {
	return &Iter{flash: f, table: t}
}

// Iter walks table entries in storage order, bufio.Scanner style:
//
//	it := table.Iter(dev)
//	for it.Next() {
//	    entry := it.Entry()
//	    // ...
//	}
//	if err := it.Err(); err != nil {
//	    // ...
//	}
type Iter struct {
	flash flash.Flash
	table Table
	index int
	cur   Descriptor
	err   error
	done  bool
}

// Next advances to the next entry. It returns false at the table terminator,
// after MaxEntries, or on error.
func (it *Iter) Next() bool {
	for !it.done && it.err == nil {
		if it.index >= MaxEntries {
			it.done = true
			return false
		}
		var raw [EntrySize]byte
		off := it.table.Offset + uint32(it.index)*EntrySize
		if err := it.flash.Read(off, raw[:]); err != nil {
			it.err = fmt.Errorf("partition table entry %d: %w", it.index, err)
			return false
		}
		it.index++

		// An erased entry terminates the table.
		if raw[0] == 0xFF && raw[1] == 0xFF {
			it.done = true
			return false
		}
		// The md5 checksum entry is not a partition.
		if raw[0] == checksumMagic[0] && raw[1] == checksumMagic[1] {
			continue
		}
		entry, err := decodeEntry(raw)
		if err != nil {
			it.err = fmt.Errorf("partition table entry %d: %w", it.index-1, err)
			return false
		}
		it.cur = entry
		return true
	}
	return false
}

// Entry returns the entry decoded by the last successful Next.
func (it *Iter) Entry() Descriptor { return it.cur }

// Err returns the first error encountered during the scan.
func (it *Iter) Err() error { return it.err }

// Write encodes entries into the table region, replacing any existing table.
// The region is erased first; a terminator is implied by the erased bytes
// that follow the last entry.
func (t Table) Write(f flash.Flash, entries []Descriptor) error {
	if len(entries) > MaxEntries {
		return fmt.Errorf("partition table: %d entries exceeds maximum of %d", len(entries), MaxEntries)
	}
	bs := f.BlockSize()
	regionEnd := t.Offset + ((MaxEntries*EntrySize + bs - 1) / bs * bs)
	if err := f.Erase(t.Offset, regionEnd); err != nil {
		return err
	}
	for i, e := range entries {
		raw, err := encodeEntry(e)
		if err != nil {
			return fmt.Errorf("partition table entry %d: %w", i, err)
		}
		if err := f.Write(t.Offset+uint32(i)*EntrySize, raw[:]); err != nil {
			return err
		}
	}
	return nil
}

func decodeEntry(raw [EntrySize]byte) (Descriptor, error) {
	if raw[0] != entryMagic[0] || raw[1] != entryMagic[1] {
		return Descriptor{}, fmt.Errorf("bad magic 0x%02X%02X", raw[0], raw[1])
	}
	label := raw[12 : 12+labelSize]
	if i := bytes.IndexByte(label, 0); i >= 0 {
		label = label[:i]
	}
	return Descriptor{
		Type:    Type(raw[2]),
		SubType: SubType(raw[3]),
		Offset:  binary.LittleEndian.Uint32(raw[4:8]),
		Size:    binary.LittleEndian.Uint32(raw[8:12]),
		Label:   string(label),
	}, nil
}

func encodeEntry(e Descriptor) ([EntrySize]byte, error) {
	var raw [EntrySize]byte
	if len(e.Label) > labelSize {
		return raw, fmt.Errorf("label %q longer than %d bytes", e.Label, labelSize)
	}
	raw[0], raw[1] = entryMagic[0], entryMagic[1]
	raw[2] = byte(e.Type)
	raw[3] = byte(e.SubType)
	binary.LittleEndian.PutUint32(raw[4:8], e.Offset)
	binary.LittleEndian.PutUint32(raw[8:12], e.Size)
	copy(raw[12:12+labelSize], e.Label)
	return raw, nil
}
