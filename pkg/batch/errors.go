package batch

import "errors"

var (
	// ErrAlreadyRunning is returned by Start while a batch is active or still draining.
	ErrAlreadyRunning = errors.New("batch: already running")

	// ErrInvalidJob is returned for a non-positive count or a negative delay.
	ErrInvalidJob = errors.New("batch: invalid job")

	// ErrNotSending is returned by Pause outside the sending state.
	ErrNotSending = errors.New("batch: not sending")

	// ErrNotPaused is returned by Resume outside the paused state.
	ErrNotPaused = errors.New("batch: not paused")

	// ErrNotActive is returned by Cancel when no batch is sending or paused.
	ErrNotActive = errors.New("batch: no active batch")
)
