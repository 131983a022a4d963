package ota

import (
	"errors"
	"fmt"
)

// ErrPendingVerify indicates that the currently booted image has not been
// accepted or rejected yet, so a new update may not start. Call Accept or
// Reject first.
var ErrPendingVerify = errors.New("ota: previous update pending verification")

// ErrOutOfSpace indicates that the image is larger than the target
// partition. No byte beyond the partition size is written.
var ErrOutOfSpace = errors.New("ota: image does not fit in target partition")

// ErrAlreadyUpdating indicates that another update is already in progress.
// The second caller is rejected immediately; there is no queueing.
var ErrAlreadyUpdating = errors.New("ota: update already in progress")

// ErrAlreadyAccepted indicates a Reject of an update that was already
// accepted. An accepted update cannot be rejected.
var ErrAlreadyAccepted = errors.New("ota: update already accepted")

// ErrAlreadyRejected indicates a Reject of an update that is already
// invalid or aborted.
var ErrAlreadyRejected = errors.New("ota: update already rejected")

// ReadError wraps a failure of the caller-supplied image stream. The
// underlying error is source-specific and opaque to this package.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("ota: image stream read failed: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
