// Package flash defines the block-storage capability the rest of the module
// is written against, plus two concrete devices: an in-memory NOR-flash
// simulator and a file-backed flash image.
//
// # Hardware Independence
//
// The library does NOT talk to hardware. Callers provide a Flash
// implementation for their device:
//
//	type MyNorFlash struct {
//	    // ... your SPI flash driver
//	}
//
//	func (f *MyNorFlash) BlockSize() uint32                { return 4096 }
//	func (f *MyNorFlash) Read(off uint32, p []byte) error  { /* ... */ }
//	func (f *MyNorFlash) Write(off uint32, p []byte) error { /* ... */ }
//	func (f *MyNorFlash) Erase(start, end uint32) error    { /* ... */ }
//
// This design allows the library to work with raw NOR flash, a memory-mapped
// region, a flash dump file, or a mock device for testing.
package flash
