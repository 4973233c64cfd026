// Package batch paces a series of test deliveries with pause, resume and cancel.
//
// A [Controller] runs one batch at a time. Each attempt verifies the session
// when the sender is also a mailer.Verifier, then sends one message,
// records an activity entry and advances the sent counter whether or not the
// delivery succeeded; there are no retries. When a batch has more than one
// message, each subject is suffixed with " (i/N)".
//
//	ctrl := batch.New(m, batch.WithLogbook(book))
//	err := ctrl.Start(context.WithoutCancel(ctx), batch.Job{
//		Params:     params,
//		Message:    msg,
//		TotalCount: 10,
//		Delay:      time.Second,
//	})
//
// Cancel always wins over pause. After Cancel the state reads Idle at once,
// but Start keeps returning ErrAlreadyRunning until the loop has exited.
// Time spent paused never counts toward the delay between messages.
//
// Log hooks ([WithOnLog] and logbook OnAppend) run without internal locks
// held and may call back into the Controller.
package batch
