package ota

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/JonathanBrouwer/go-esp-ota/flash"
	"github.com/JonathanBrouwer/go-esp-ota/otadata"
	"github.com/JonathanBrouwer/go-esp-ota/partition"
)

// Updater drives over-the-air firmware updates on a two-slot flash layout.
// It owns the in-progress guard that serializes Begin calls; all other state
// lives on flash, so an Updater may be created fresh after every reboot.
//
// The storage handle is assumed to be single-owner: nothing else accesses
// the device while an Updater method runs.
type Updater struct {
	flash    flash.Flash
	config   Config
	updating atomic.Bool
}

// New creates a new Updater on the given flash device.
//
// Example:
//
//	dev := myboard.Flash()
//	up := ota.New(dev,
//	    ota.WithProgressCallback(progressFunc),
//	    ota.WithLogger(logger),
//	)
func New(f flash.Flash, opts ...Option) *Updater {
	if f == nil {
		panic("flash device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Updater{flash: f, config: cfg}
}

// Begin performs a complete firmware update:
//  1. Acquire the in-progress guard; a concurrent Begin fails immediately
//     with ErrAlreadyUpdating.
//  2. Require the stored state to be Valid; otherwise fail ErrPendingVerify.
//  3. Select the inactive application slot from the next sequence number.
//  4. Erase the target partition, then stream the image into it in
//     block-sized buffers, reporting progress after every write.
//  5. Persist a new metadata record selecting the target slot, state New.
//
// A read of zero bytes from image signals end of stream. The image length
// need not be known in advance; if it exceeds the target partition Begin
// fails with ErrOutOfSpace before any byte past the partition end is
// written. The context is honored between stream reads, which are the only
// points where Begin may block on a slow transport.
//
// On success the caller is expected to reboot into the new slot, then call
// Accept once the new firmware has proven itself.
func (u *Updater) Begin(ctx context.Context, image io.Reader) (err error) {
	if !u.updating.CompareAndSwap(false, true) {
		return ErrAlreadyUpdating
	}
	defer func() {
		if err != nil || u.config.GuardRelease == GuardReleaseAlways {
			u.updating.Store(false)
		}
	}()

	startTime := time.Now()

	// A previous update must be accepted or rejected before a new one
	// may start.
	rec, err := otadata.Read(u.flash)
	if err != nil {
		return err
	}
	if !rec.IsValid() {
		return fmt.Errorf("%w (state %s)", ErrPendingVerify, rec.State)
	}

	newSeq := rec.Sequence + 1
	slot := int((newSeq - 1) % 2)
	target, err := partition.FindByType(u.flash, partition.TypeApp, partition.AppSlot(slot))
	if err != nil {
		return err
	}

	u.config.Logger.Info().
		Uint32("current_seq", rec.Sequence).
		Uint32("new_seq", newSeq).
		Int("slot", slot).
		Str("partition", target.Label).
		Msg("starting OTA update")

	u.reportProgress(Progress{
		Phase:         PhaseErasing,
		PartitionSize: target.Size,
		Elapsed:       time.Since(startTime),
	})

	if err := u.flash.Erase(target.Offset, target.Offset+target.Size); err != nil {
		return fmt.Errorf("erase target partition: %w", err)
	}

	// Stream the image, one block-sized buffer at a time. Writes are
	// issued in strictly increasing offset order and the next chunk is
	// only pulled once the current one is flushed.
	buf := make([]byte, u.flash.BlockSize())
	written := 0
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		n, done, err := fillBuffer(image, buf)
		if err != nil {
			return &ReadError{Err: err}
		}

		if written+n > int(target.Size) {
			return fmt.Errorf("%w (partition %s is %d bytes)", ErrOutOfSpace, target.Label, target.Size)
		}

		if n > 0 {
			if err := u.flash.Write(target.Offset+uint32(written), buf[:n]); err != nil {
				return fmt.Errorf("write image data: %w", err)
			}
			written += n

			u.reportProgress(Progress{
				Phase:         PhaseWriting,
				BytesWritten:  written,
				PartitionSize: target.Size,
				Elapsed:       time.Since(startTime),
			})
		}

		if done {
			break
		}
	}

	u.reportProgress(Progress{
		Phase:         PhaseFinalizing,
		BytesWritten:  written,
		PartitionSize: target.Size,
		Elapsed:       time.Since(startTime),
	})

	// No image digest is computed here; the reserved field carries the
	// erased-flash sentinel.
	newRec := otadata.Record{Sequence: newSeq, State: otadata.StateNew}
	for i := range newRec.Reserved {
		newRec.Reserved[i] = 0xFF
	}
	if err := otadata.Write(u.flash, newRec); err != nil {
		return err
	}

	u.reportProgress(Progress{
		Phase:         PhaseComplete,
		BytesWritten:  written,
		PartitionSize: target.Size,
		Elapsed:       time.Since(startTime),
	})

	u.config.Logger.Info().
		Int("bytes", written).
		Str("elapsed", time.Since(startTime).String()).
		Msg("OTA update complete, reboot to activate")

	return nil
}

// fillBuffer reads from image until buf is full or the stream ends. A read
// returning zero bytes signals end of stream. Returns the number of bytes
// placed in buf and whether the stream is exhausted.
func fillBuffer(image io.Reader, buf []byte) (int, bool, error) {
	filled := 0
	for filled < len(buf) {
		n, err := image.Read(buf[filled:])
		filled += n
		if err == io.EOF {
			return filled, true, nil
		}
		if err != nil {
			return filled, false, err
		}
		if n == 0 {
			return filled, true, nil
		}
	}
	return filled, false, nil
}

// Accept marks the currently booted image as working. It must be called
// after an update and reboot to confirm the new firmware; otherwise the
// next Begin refuses to start.
//
// Accepting from Invalid or Aborted additionally rolls the sequence number
// back by one: the bootloader refused the new image and fell back to the
// previous slot, so the record is corrected to re-select the slot that is
// actually running.
func (u *Updater) Accept() error {
	rec, err := otadata.Read(u.flash)
	if err != nil {
		return err
	}

	switch rec.State {
	case otadata.StateValid:
		// Already accepted.
		return nil
	case otadata.StateInvalid, otadata.StateAborted:
		rec.Sequence--
		rec.State = otadata.StateValid
	case otadata.StatePendingVerify:
		rec.State = otadata.StateValid
	default:
		// New, Undefined: accepting from an unexpected state is
		// allowed and still persisted.
		u.config.Logger.Warn().Stringer("state", rec.State).Msg("accepting update from unexpected state")
		rec.State = otadata.StateValid
	}

	return otadata.Write(u.flash, rec)
}

// Reject marks the currently booted image as not working. The bootloader
// will not select its slot again. Rejecting an already-accepted update is
// refused with ErrAlreadyAccepted; rejecting twice reports
// ErrAlreadyRejected. Neither refusal touches flash.
func (u *Updater) Reject() error {
	rec, err := otadata.Read(u.flash)
	if err != nil {
		return err
	}

	switch rec.State {
	case otadata.StateValid:
		return ErrAlreadyAccepted
	case otadata.StateInvalid, otadata.StateAborted:
		return ErrAlreadyRejected
	case otadata.StatePendingVerify:
		rec.State = otadata.StateInvalid
	default:
		u.config.Logger.Warn().Stringer("state", rec.State).Msg("rejecting update from unexpected state")
		rec.State = otadata.StateInvalid
	}

	return otadata.Write(u.flash, rec)
}

// IsValid reports whether the current update has been accepted.
func (u *Updater) IsValid() (bool, error) {
	rec, err := otadata.Read(u.flash)
	if err != nil {
		return false, err
	}
	return rec.IsValid(), nil
}

// BootedPartition returns the application partition selected by the stored
// sequence number, i.e. the slot presumed to be currently executing. The
// result is recomputed from flash on every call.
func (u *Updater) BootedPartition() (partition.Descriptor, error) {
	rec, err := otadata.Read(u.flash)
	if err != nil {
		return partition.Descriptor{}, err
	}
	slot, err := rec.Slot()
	if err != nil {
		return partition.Descriptor{}, err
	}
	return partition.FindByType(u.flash, partition.TypeApp, partition.AppSlot(slot))
}

// Updating reports whether an update session currently holds the guard.
func (u *Updater) Updating() bool { return u.updating.Load() }

// ReleaseGuard clears the in-progress guard. Only needed with
// GuardHoldOnSuccess, when the planned reboot does not happen.
func (u *Updater) ReleaseGuard() { u.updating.Store(false) }

func (u *Updater) reportProgress(progress Progress) {
	if u.config.ProgressCallback != nil {
		u.config.ProgressCallback(progress)
	}
}
