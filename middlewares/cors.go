package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"

	"github.com/dmitrymomot/smtptester/internal"
)

// CORSConfig configures cross-origin access to the JSON API.
// Origins may contain a single "*" wildcard, e.g. "https://*.example.com".
type CORSConfig struct {
	AllowOrigins     []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	AllowHeaders     []string      `env:"CORS_HEADERS" envDefault:"Origin,Content-Type,Accept,X-Request-ID" envSeparator:","`
	ExposeHeaders    []string      `env:"CORS_EXPOSE_HEADERS" envDefault:"X-Request-ID" envSeparator:","`
	AllowCredentials bool          `env:"CORS_ALLOW_CREDENTIALS"`
	MaxAge           time.Duration `env:"CORS_MAX_AGE" envDefault:"12h"`
}

var corsMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// CORS answers preflight requests and decorates responses with the
// Access-Control headers computed by go-chi/cors.
func CORS(cfg CORSConfig) internal.Middleware {
	handler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowOrigins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   cfg.AllowHeaders,
		ExposedHeaders:   cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           int(cfg.MaxAge.Seconds()),
	})

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			var err error
			handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				err = next(c)
			})).ServeHTTP(c.Response(), c.Request())
			return err
		}
	}
}
