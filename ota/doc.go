// Package ota implements safe A/B firmware updates for flash-based embedded
// devices.
//
// # Overview
//
// Two application partitions ("slots") alternate as update targets: the
// running image stays untouched while the new image streams into the other
// slot, so a power loss, truncated transfer, or bad image never leaves the
// device unbootable. Which slot is active is recorded in a small, redundant,
// checksummed metadata record (see package otadata); the bootloader and this
// package agree on the record via a monotonically increasing sequence number
// whose parity selects the slot.
//
// # Basic Usage
//
//	dev := myboard.Flash() // your flash.Flash implementation
//	up := ota.New(dev)
//
//	// Stream the new image (from any io.Reader) into the inactive slot.
//	if err := up.Begin(ctx, imageStream); err != nil {
//	    log.Fatal().Err(err).Msg("update failed")
//	}
//	myboard.Reboot()
//
// After rebooting into the new image, the firmware must confirm it works:
//
//	if selfTestPassed {
//	    up.Accept()
//	} else {
//	    up.Reject() // bootloader falls back to the previous slot
//	}
//
// # Update Lifecycle
//
// A freshly written image is in state New. Once booted it becomes
// PendingVerify, and no further update may begin until it is accepted
// (Valid) or rejected (Invalid). Accepting after a bootloader fallback
// (Invalid or Aborted) also rolls the sequence number back so the record
// again matches the slot that is actually running.
//
// # Progress Tracking
//
//	up := ota.New(dev,
//	    ota.WithProgressCallback(func(p ota.Progress) {
//	        fmt.Printf("[%s] %d/%d bytes\n", p.Phase, p.BytesWritten, p.PartitionSize)
//	    }),
//	)
//
// # Error Handling
//
// User-facing failures are sentinel errors matchable with errors.Is:
// ErrPendingVerify, ErrOutOfSpace, ErrAlreadyUpdating, ErrAlreadyAccepted,
// ErrAlreadyRejected. Image stream failures are wrapped in ReadError.
// Lower-tier failures (otadata.ErrCorrupt, partition.ErrNotFound,
// partition.ErrFoundTwice, flash.OpError) propagate wrapped and unmodified;
// there are no retries anywhere in this package.
package ota
