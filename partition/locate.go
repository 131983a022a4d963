package partition

import (
	"errors"
	"fmt"

	"github.com/JonathanBrouwer/go-esp-ota/flash"
)

// ErrNotFound indicates that no table entry matched the selector.
var ErrNotFound = errors.New("partition: not found")

// ErrFoundTwice indicates that more than one table entry matched the
// selector. The table is ambiguous and no lookup result can be trusted.
var ErrFoundTwice = errors.New("partition: found twice")

// FindByType scans the default partition table for the single entry with
// the given type and subtype.
func FindByType(f flash.Flash, typ Type, sub SubType) (Descriptor, error) {
	return find(f, func(d Descriptor) bool {
		return d.Type == typ && d.SubType == sub
	}, fmt.Sprintf("type 0x%02X/0x%02X", byte(typ), byte(sub)))
}

// FindByName scans the default partition table for the single entry with
// the given label.
func FindByName(f flash.Flash, name string) (Descriptor, error) {
	return find(f, func(d Descriptor) bool {
		return d.Label == name
	}, fmt.Sprintf("name %q", name))
}

func find(f flash.Flash, match func(Descriptor) bool, what string) (Descriptor, error) {
	var found Descriptor
	var ok bool

	it := DefaultTable().Iter(f)
	for it.Next() {
		entry := it.Entry()
		if !match(entry) {
			continue
		}
		if ok {
			return Descriptor{}, fmt.Errorf("partition %s: %w", what, ErrFoundTwice)
		}
		found, ok = entry, true
	}
	if err := it.Err(); err != nil {
		return Descriptor{}, err
	}
	if !ok {
		return Descriptor{}, fmt.Errorf("partition %s: %w", what, ErrNotFound)
	}
	return found, nil
}
