// Package logbook is the operator-facing activity log: an append-only list of
// info, success and error entries read newest first.
//
// Two stores are provided. [Memory] keeps entries in process and is the default.
// [Redis] keeps them in a capped Redis list so several instances share one log.
//
//	store := logbook.NewMemory(1000)
//	book := logbook.NewLogger(store, logbook.WithSlog(log))
//	book.Info(ctx, "Testing connection to smtp.example.com:587...")
//	entries, _ := book.List(ctx, 50)
package logbook
