package billingapi

import "time"

// Config holds the connection settings of the billing API client.
type Config struct {
	BaseURL         string        `env:"GATEKIT_API_URL,notEmpty"`                        // BaseURL is the API root, e.g. "https://api.example.com/v1".
	Token           string        `env:"GATEKIT_API_TOKEN"`                               // Token is sent as a bearer token when set.
	Timeout         time.Duration `env:"GATEKIT_API_TIMEOUT" envDefault:"10s"`            // Timeout bounds a single HTTP attempt.
	MaxRetries      int           `env:"GATEKIT_API_MAX_RETRIES" envDefault:"2"`          // MaxRetries is the number of retries after the first attempt.
	RetryInterval   time.Duration `env:"GATEKIT_API_RETRY_INTERVAL" envDefault:"200ms"`   // RetryInterval is the first backoff delay.
	MaxRetryDelay   time.Duration `env:"GATEKIT_API_MAX_RETRY_DELAY" envDefault:"2s"`     // MaxRetryDelay caps the backoff delay.
	BreakerFailures uint32        `env:"GATEKIT_API_BREAKER_FAILURES" envDefault:"5"`     // BreakerFailures consecutive failures open the circuit of an operation.
	BreakerTimeout  time.Duration `env:"GATEKIT_API_BREAKER_TIMEOUT" envDefault:"30s"`    // BreakerTimeout is how long an open circuit rejects calls.
	UserAgent       string        `env:"GATEKIT_API_USER_AGENT" envDefault:"gatekit/1.0"` // UserAgent is sent with every request.
}

// DefaultConfig returns the env defaults for baseURL, for callers that do not load from env.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		RetryInterval:   200 * time.Millisecond,
		MaxRetryDelay:   2 * time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
		UserAgent:       "gatekit/1.0",
	}
}
