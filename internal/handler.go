package internal

// Handler declares routes on a router.
//
// Example:
//
//	type LogsHandler struct {
//	    book *logbook.Logger
//	}
//
//	func (h *LogsHandler) Routes(r smtptester.Router) {
//	    r.GET("/api/logs", h.list)
//	    r.DELETE("/api/logs", h.clear)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc serves one route. A non-nil error goes to the ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware decorates a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler turns a handler error into a response.
type ErrorHandler func(Context, error) error
