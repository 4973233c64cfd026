package smtp

import "time"

// Config holds gateway settings.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	AuthMechanism     string        `env:"SMTP_AUTH_MECHANISM" envDefault:"PLAIN"`
	Helo              string        `env:"SMTP_HELO"`
	Timeout           time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	AllowInsecureAuth bool          `env:"SMTP_ALLOW_INSECURE_AUTH" envDefault:"false"`
	TLSSkipVerify     bool          `env:"SMTP_TLS_SKIP_VERIFY" envDefault:"false"`
}
