package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                                     // ConnectionURL is the URL of the database, e.g. "redis://:password@localhost:6379/0". Empty disables Redis.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`           // RetryAttempts is the number of connection attempts.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`          // RetryInterval is the pause between connection attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"15s"`        // ConnectTimeout bounds Connect as a whole.
	CountPrefix    string        `env:"REDIS_COUNT_PREFIX" envDefault:"gatekit:usage"` // CountPrefix namespaces usage counter keys.
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
