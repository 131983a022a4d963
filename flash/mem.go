package flash

// Mem is an in-memory flash device with NOR semantics: erase sets bytes to
// 0xFF, writes can only clear bits. It is used by the tests throughout this
// module and by otatool when assembling a fresh image.
//
// Mem is not safe for concurrent use; the update workflow assumes
// single-owner access to the device for the duration of each call.
type Mem struct {
	data      []byte
	blockSize uint32
}

// NewMem creates an in-memory flash of the given capacity and block size,
// fully erased. Capacity must be a multiple of the block size.
func NewMem(capacity, blockSize uint32) *Mem {
	if blockSize == 0 || capacity%blockSize != 0 {
		panic("flash: capacity must be a multiple of the block size")
	}
	data := make([]byte, capacity)
	for i := range data {
		data[i] = 0xFF
	}
	return &Mem{data: data, blockSize: blockSize}
}

// BlockSize returns the erase granularity in bytes.
func (m *Mem) BlockSize() uint32 { return m.blockSize }

// Capacity returns the total size of the device in bytes.
func (m *Mem) Capacity() uint32 { return uint32(len(m.data)) }

// Bytes returns the backing storage. Mutating it bypasses NOR semantics;
// intended for tests (fault injection) and image assembly.
func (m *Mem) Bytes() []byte { return m.data }

// Read fills p with the bytes stored at off.
func (m *Mem) Read(off uint32, p []byte) error {
	if err := m.check(off, len(p)); err != nil {
		return &OpError{Op: "read", Offset: off, Err: err}
	}
	copy(p, m.data[off:])
	return nil
}

// Write stores p at off. Bits can only be cleared, as on real NOR flash:
// each stored byte becomes old AND new.
func (m *Mem) Write(off uint32, p []byte) error {
	if err := m.check(off, len(p)); err != nil {
		return &OpError{Op: "write", Offset: off, Err: err}
	}
	for i, b := range p {
		m.data[off+uint32(i)] &= b
	}
	return nil
}

// Erase resets every byte in [start, end) to 0xFF.
func (m *Mem) Erase(start, end uint32) error {
	if start%m.blockSize != 0 || end%m.blockSize != 0 {
		return &OpError{Op: "erase", Offset: start, Err: ErrUnalignedErase}
	}
	if start > end || end > uint32(len(m.data)) {
		return &OpError{Op: "erase", Offset: start, Err: ErrOutOfBounds}
	}
	for i := start; i < end; i++ {
		m.data[i] = 0xFF
	}
	return nil
}

func (m *Mem) check(off uint32, n int) error {
	if uint64(off)+uint64(n) > uint64(len(m.data)) {
		return ErrOutOfBounds
	}
	return nil
}
