package ota

import "time"

// Phase identifies the step an update is currently in.
type Phase string

const (
	// PhaseErasing - erasing the target application partition
	PhaseErasing Phase = "erasing"

	// PhaseWriting - streaming the image into the target partition
	PhaseWriting Phase = "writing"

	// PhaseFinalizing - persisting the new OTA metadata record
	PhaseFinalizing Phase = "finalizing"

	// PhaseComplete - the update finished; the caller should reboot
	PhaseComplete Phase = "complete"
)

// Progress is passed to the progress callback during Begin.
type Progress struct {
	// Phase is the current update phase
	Phase Phase

	// BytesWritten is the cumulative number of image bytes written so far
	BytesWritten int

	// PartitionSize is the capacity of the target partition in bytes
	PartitionSize uint32

	// Elapsed is the time since Begin started
	Elapsed time.Duration
}

// ProgressCallback is invoked synchronously from the copy loop, after every
// buffer write during PhaseWriting and once per phase change. It must return
// quickly: the update does not proceed while it runs.
type ProgressCallback func(Progress)
