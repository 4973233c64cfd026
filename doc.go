// Package smtptester is a small HTTP service for exercising SMTP servers.
//
// It verifies connections, sends single test messages, runs paced batches
// that can be paused, resumed and cancelled, and keeps an activity log of
// every outcome. The root package re-exports the HTTP runtime from
// internal; domain logic lives under pkg/ and routes under handlers/.
//
// # Quick Start
//
//	book := logbook.NewLogger(logbook.NewMemory(0))
//	gateway := smtp.New()
//	m := mailer.New(gateway, mailer.NewRenderer(mailer.DefaultFS()), mailer.Config{})
//	controller := batch.New(m, batch.WithLogbook(book))
//
//	app := smtptester.New(
//	    smtptester.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    smtptester.WithErrorHandler(handlers.ErrorHandler),
//	    smtptester.WithHandlers(
//	        handlers.NewConnection(m, book),
//	        handlers.NewEmail(m, book),
//	        handlers.NewBatch(controller, book),
//	        handlers.NewLogs(book),
//	    ),
//	)
//
//	if err := app.Run(":8080", smtptester.ShutdownHook(controller.Shutdown)); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// Handlers implement [Handler] to declare routes:
//
//	func (h *Logs) Routes(r smtptester.Router) {
//	    r.GET("/api/logs", h.list)
//	    r.DELETE("/api/logs", h.clear)
//	}
//
// # Shutdown
//
// SIGINT and SIGTERM trigger graceful shutdown. Hooks registered with
// [ShutdownHook] run in order with the shutdown timeout applied; the batch
// controller's Shutdown stops a running batch and waits for its loop.
package smtptester
