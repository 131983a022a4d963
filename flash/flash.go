package flash

import (
	"errors"
	"fmt"
)

// Flash is the storage capability required by this module.
//
// Offsets and sizes are byte-addressed. Erase operates on whole blocks:
// start and end must be multiples of BlockSize, and erasing sets every byte
// in [start, end) to 0xFF. Write may only clear bits; callers erase first.
type Flash interface {
	// BlockSize returns the erase granularity of the medium in bytes.
	BlockSize() uint32

	// Read fills p with the bytes stored at off.
	Read(off uint32, p []byte) error

	// Write stores p at off. The target range must have been erased.
	Write(off uint32, p []byte) error

	// Erase resets every byte in [start, end) to 0xFF.
	// Both bounds must be block-aligned.
	Erase(start, end uint32) error
}

// ErrOutOfBounds indicates an access past the end of the device.
var ErrOutOfBounds = errors.New("flash: access out of bounds")

// ErrUnalignedErase indicates an erase range not aligned to the block size.
var ErrUnalignedErase = errors.New("flash: erase range not block-aligned")

// OpError wraps a failure of a single storage operation with the operation
// name and the offset at which it occurred.
type OpError struct {
	// Op is the operation that failed: "read", "write" or "erase"
	Op string

	// Offset is the byte offset of the failed access
	Offset uint32

	// Err is the underlying device error
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("flash %s at 0x%X: %v", e.Op, e.Offset, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
