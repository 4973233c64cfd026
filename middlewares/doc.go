// Package middlewares holds the HTTP middleware stacked in front of the SMTP
// tester API.
//
//   - [RequestID] tags each request with a ULID (or the upstream X-Request-ID)
//     and [RequestIDExtractor] puts it on every log record.
//   - [RequestLogger] writes one access line per request.
//   - [Recover] converts panics to [PanicError].
//   - [Timeout] bounds request duration and returns [TimeoutError].
//   - [CORS] delegates to github.com/go-chi/cors.
//
// Typical wiring, outermost first:
//
//	app := smtptester.New(
//	    smtptester.WithLogger("smtptester", cfg.Logger, middlewares.RequestIDExtractor()),
//	    smtptester.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.RequestLogger(),
//	        middlewares.Recover(),
//	        middlewares.CORS(cfg.CORS),
//	    ),
//	)
//
// PanicError and TimeoutError both expose an HTTPError method so the error
// handler can render them without leaking internals.
package middlewares
