package job

import "errors"

// Job errors.
var (
	// ErrUnknownTask is returned when a task name has not been registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrDuplicateTask is returned when two scheduled tasks share a name.
	ErrDuplicateTask = errors.New("job: duplicate task name")

	// ErrInvalidSchedule is returned when a cron expression cannot be parsed.
	ErrInvalidSchedule = errors.New("job: invalid schedule")

	// ErrAlreadyStarted is returned when attempting to start a manager
	// that is already running.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned when attempting to stop a manager
	// that is not running.
	ErrNotStarted = errors.New("job: not started")
)
