package internal

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

// Router is what a Handler sees while declaring its routes.
// Route middleware runs inside the global middleware, first listed outermost.
type Router interface {
	GET(path string, h HandlerFunc, mw ...Middleware)
	POST(path string, h HandlerFunc, mw ...Middleware)
	DELETE(path string, h HandlerFunc, mw ...Middleware)

	// Route mounts a sub-router under pattern.
	Route(pattern string, fn func(r Router))

	// Group shares middleware between routes without adding a prefix.
	Group(fn func(r Router))

	// Use adds middleware for every route declared on this router afterwards.
	Use(mw ...Middleware)
}

type routerAdapter struct {
	router chi.Router
	app    *App
}

func (r *routerAdapter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Method(http.MethodGet, path, r.wrap(h, mw))
}

func (r *routerAdapter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Method(http.MethodPost, path, r.wrap(h, mw))
}

func (r *routerAdapter) DELETE(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Method(http.MethodDelete, path, r.wrap(h, mw))
}

func (r *routerAdapter) Route(pattern string, fn func(Router)) {
	r.router.Route(pattern, func(sub chi.Router) {
		fn(r.sub(sub))
	})
}

func (r *routerAdapter) Group(fn func(Router)) {
	r.router.Group(func(sub chi.Router) {
		fn(r.sub(sub))
	})
}

func (r *routerAdapter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.router.Use(r.app.adaptMiddleware(m))
	}
}

func (r *routerAdapter) sub(cr chi.Router) *routerAdapter {
	return &routerAdapter{router: cr, app: r.app}
}

func (r *routerAdapter) wrap(h HandlerFunc, mw []Middleware) http.Handler {
	for _, m := range slices.Backward(mw) {
		h = m(h)
	}
	return r.app.wrapHandler(h)
}

// adaptMiddleware lifts a Context middleware into chi's http.Handler chain.
// The inner handler gets the (possibly replaced) request and writer from c.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := a.newContext(w, r)
			err := mw(func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			})(c)
			if err != nil {
				a.handleError(c, err)
			}
		})
	}
}
