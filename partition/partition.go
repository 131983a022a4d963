package partition

import "fmt"

// Type is the major partition type.
type Type byte

const (
	// TypeApp marks a partition holding an application image
	TypeApp Type = 0x00

	// TypeData marks a partition holding data (OTA state, NVS, ...)
	TypeData Type = 0x01
)

// SubType refines a Type. Values follow the ESP-IDF partition table so
// images built by this module boot on stock bootloaders.
type SubType byte

const (
	// SubTypeFactory is the factory application image (app)
	SubTypeFactory SubType = 0x00

	// SubTypeOTA0 is application slot 0 (app)
	SubTypeOTA0 SubType = 0x10

	// SubTypeOTA1 is application slot 1 (app)
	SubTypeOTA1 SubType = 0x11

	// SubTypeDataOTA is the OTA metadata partition (data)
	SubTypeDataOTA SubType = 0x00
)

// AppSlot returns the subtype of application slot n. Only slots 0 and 1
// exist in the two-slot scheme.
func AppSlot(n int) SubType {
	if n != 0 && n != 1 {
		panic(fmt.Sprintf("partition: invalid application slot %d", n))
	}
	return SubTypeOTA0 + SubType(n)
}

// Descriptor describes one physical flash region named by the partition
// table. Descriptors are decoded fresh on every lookup and never cached.
type Descriptor struct {
	// Type is the major partition type
	Type Type

	// SubType refines Type; for app partitions it encodes the slot
	SubType SubType

	// Offset is the byte offset of the partition on flash
	Offset uint32

	// Size is the partition length in bytes
	Size uint32

	// Label is the human-readable partition name
	Label string
}

// Slot returns the application slot index of the descriptor, or false if
// the descriptor is not an OTA application partition.
func (d Descriptor) Slot() (int, bool) {
	if d.Type != TypeApp {
		return 0, false
	}
	switch d.SubType {
	case SubTypeOTA0:
		return 0, true
	case SubTypeOTA1:
		return 1, true
	}
	return 0, false
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (type=0x%02X subtype=0x%02X offset=0x%X size=0x%X)",
		d.Label, byte(d.Type), byte(d.SubType), d.Offset, d.Size)
}
