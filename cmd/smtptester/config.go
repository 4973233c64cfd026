package main

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/smtptester/middlewares"
	"github.com/dmitrymomot/smtptester/pkg/dnscheck"
	"github.com/dmitrymomot/smtptester/pkg/logger"
	"github.com/dmitrymomot/smtptester/pkg/mailer"
	"github.com/dmitrymomot/smtptester/pkg/mailer/smtp"
	"github.com/dmitrymomot/smtptester/pkg/probe"
	"github.com/dmitrymomot/smtptester/pkg/redis"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Logger logger.Config
	SMTP   smtp.Config
	Mailer mailer.Config
	DNS    dnscheck.Config
	Probe  probe.Config
	Redis  redis.Config
	CORS   middlewares.CORSConfig
	HTTP   HTTPConfig
	Batch  BatchConfig
	Log    LogbookConfig
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	MaxUploadBytes  int64         `env:"HTTP_MAX_UPLOAD_BYTES" envDefault:"26214400"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	// Preflight runs a DNS check before every connection test.
	Preflight bool `env:"HTTP_PREFLIGHT_DNS" envDefault:"false"`
}

type BatchConfig struct {
	PausePoll time.Duration `env:"BATCH_PAUSE_POLL" envDefault:"500ms"`
	DelayTick time.Duration `env:"BATCH_DELAY_TICK" envDefault:"100ms"`
}

type LogbookConfig struct {
	// Max is the number of entries kept; 0 keeps everything.
	Max int `env:"LOGBOOK_MAX" envDefault:"1000"`
}

func loadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
