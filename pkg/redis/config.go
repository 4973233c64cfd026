package redis

import "time"

// Config selects and tunes the Redis connection backing the logbook.
// An empty URL keeps the logbook in memory.
type Config struct {
	URL             string        `env:"REDIS_URL"`
	LogKey          string        `env:"REDIS_LOG_KEY" envDefault:"smtptester:logs"`
	PoolSize        int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	ConnectAttempts int           `env:"REDIS_CONNECT_ATTEMPTS" envDefault:"3"`
	RetryInterval   time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"1s"`
	DialTimeout     time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout     time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout    time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}
