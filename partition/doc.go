// Package partition models the on-flash partition table: descriptor types,
// the 32-byte binary entry codec, and lookup of a single partition by type
// or by name.
//
// The table lives at a fixed offset on flash (0x8000 by default) and is a
// sequence of fixed-size entries terminated by an erased (all-0xFF) entry.
// Lookups scan the table once and require exactly one match; zero matches
// and duplicate matches are both errors, so a successful lookup always
// identifies an unambiguous physical flash region.
//
// Descriptors are transient: they are decoded from flash on every lookup and
// never cached, so a lookup always reflects the table as currently stored.
package partition
