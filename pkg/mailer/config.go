package mailer

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// TemplateDir overrides the embedded templates with a directory on disk.
	TemplateDir     string `env:"MAILER_TEMPLATE_DIR"`
	DefaultLayout   string `env:"MAILER_DEFAULT_LAYOUT" envDefault:"base.html"`
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"SMTP Test Email"`
}
