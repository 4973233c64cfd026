// Package job runs periodic tasks on cron schedules inside the process.
//
// Tasks are plain structs with Name(), Schedule() and Handle(ctx) methods;
// no interface import is needed. Schedules use the standard five-field
// cron syntax (minute hour day-of-month month day-of-week).
//
//	m, err := job.NewManager(
//	    job.WithScheduledTask(probe.New(cfg, verifier, book)),
//	    job.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//
//	app := smtptester.New(
//	    smtptester.WithStartupHook(m.StartFunc()),
//	    smtptester.WithShutdownHook(m.Shutdown()),
//	)
//
// A task that is still running when its next tick fires is skipped for that
// tick. Panics inside a task are recovered and logged.
//
// The package defines sentinel errors for common failure modes:
//
//   - [ErrUnknownTask] - Task name not registered
//   - [ErrDuplicateTask] - Two tasks share a name
//   - [ErrInvalidSchedule] - Cron expression rejected
//   - [ErrAlreadyStarted] - Manager already running
//   - [ErrNotStarted] - Manager not running (also the readiness failure)
package job
