package flash

import (
	"fmt"
	"os"
)

// File is a flash device backed by a flash image file on the host
// filesystem. Byte N of the file is byte N of the flash, so images produced
// or modified through File can be flashed to a device verbatim.
type File struct {
	f         *os.File
	size      uint32
	blockSize uint32
}

// OpenFile opens an existing flash image file for reading and writing.
// The file size must be a multiple of the block size.
func OpenFile(path string, blockSize uint32) (*File, error) {
	if blockSize == 0 {
		return nil, fmt.Errorf("flash: block size must be positive")
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size()%int64(blockSize) != 0 {
		f.Close()
		return nil, fmt.Errorf("flash: image size %d is not a multiple of block size %d", info.Size(), blockSize)
	}
	return &File{f: f, size: uint32(info.Size()), blockSize: blockSize}, nil
}

// CreateFile creates a new, fully erased flash image file.
func CreateFile(path string, capacity, blockSize uint32) (*File, error) {
	if blockSize == 0 || capacity%blockSize != 0 {
		return nil, fmt.Errorf("flash: capacity must be a multiple of the block size")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	blank := make([]byte, blockSize)
	for i := range blank {
		blank[i] = 0xFF
	}
	for off := uint32(0); off < capacity; off += blockSize {
		if _, err := f.WriteAt(blank, int64(off)); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &File{f: f, size: capacity, blockSize: blockSize}, nil
}

// BlockSize returns the erase granularity in bytes.
func (d *File) BlockSize() uint32 { return d.blockSize }

// Capacity returns the total size of the image in bytes.
func (d *File) Capacity() uint32 { return d.size }

// Close flushes and closes the underlying file.
func (d *File) Close() error { return d.f.Close() }

// Read fills p with the bytes stored at off.
func (d *File) Read(off uint32, p []byte) error {
	if uint64(off)+uint64(len(p)) > uint64(d.size) {
		return &OpError{Op: "read", Offset: off, Err: ErrOutOfBounds}
	}
	if _, err := d.f.ReadAt(p, int64(off)); err != nil {
		return &OpError{Op: "read", Offset: off, Err: err}
	}
	return nil
}

// Write stores p at off, AND-combining with the current contents to match
// NOR behavior.
func (d *File) Write(off uint32, p []byte) error {
	if uint64(off)+uint64(len(p)) > uint64(d.size) {
		return &OpError{Op: "write", Offset: off, Err: ErrOutOfBounds}
	}
	cur := make([]byte, len(p))
	if _, err := d.f.ReadAt(cur, int64(off)); err != nil {
		return &OpError{Op: "write", Offset: off, Err: err}
	}
	for i := range cur {
		cur[i] &= p[i]
	}
	if _, err := d.f.WriteAt(cur, int64(off)); err != nil {
		return &OpError{Op: "write", Offset: off, Err: err}
	}
	return nil
}

// Erase resets every byte in [start, end) to 0xFF.
func (d *File) Erase(start, end uint32) error {
	if start%d.blockSize != 0 || end%d.blockSize != 0 {
		return &OpError{Op: "erase", Offset: start, Err: ErrUnalignedErase}
	}
	if start > end || end > d.size {
		return &OpError{Op: "erase", Offset: start, Err: ErrOutOfBounds}
	}
	blank := make([]byte, d.blockSize)
	for i := range blank {
		blank[i] = 0xFF
	}
	for off := start; off < end; off += d.blockSize {
		if _, err := d.f.WriteAt(blank, int64(off)); err != nil {
			return &OpError{Op: "erase", Offset: off, Err: err}
		}
	}
	return nil
}
