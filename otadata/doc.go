// Package otadata reads and writes the OTA metadata record: a small,
// checksummed description of which application slot is selected and whether
// it has been verified.
//
// The record is stored twice in the OTA data partition, in adjacent erase
// blocks ("copy A" at the partition base, "copy B" one block further). Read
// returns copy A if it validates and falls back to copy B otherwise; only
// when both copies fail their checksum is the data considered corrupt. Write
// erases and rewrites both copies, so after any successful write the copies
// are bit-identical. A power loss between the two writes leaves exactly one
// valid copy, which the read fallback recovers.
//
// The record is 32 bytes: sequence and state, a 20-byte reserved field, and
// a CRC-32 trailer over the payload. The state values match ESP-IDF's image
// states, and the checksum covers the whole payload so corruption of any
// field is detected.
package otadata
