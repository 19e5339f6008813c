package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/gatekit/pkg/billingapi"
	"github.com/dmitrymomot/gatekit/pkg/redis"
	"github.com/dmitrymomot/gatekit/pkg/session"
)

// Config is the full configuration of a gatekit process.
type Config struct {
	API      billingapi.Config
	Redis    redis.Config
	Sessions session.RegistryConfig

	Environment string `env:"GATEKIT_ENV" envDefault:"development"`
	ServiceName string `env:"GATEKIT_SERVICE_NAME" envDefault:"gatekit"`
	LogLevel    string `env:"GATEKIT_LOG_LEVEL"`
	LogFormat   string `env:"GATEKIT_LOG_FORMAT"`

	// Account namespaces Redis usage counters; required only with Redis.
	Account string `env:"GATEKIT_ACCOUNT"`

	SubscriptionTTL   time.Duration `env:"GATEKIT_SUBSCRIPTION_TTL" envDefault:"5m"`
	UsageTTL          time.Duration `env:"GATEKIT_USAGE_TTL" envDefault:"5m"`
	UsageFetchTimeout time.Duration `env:"GATEKIT_USAGE_FETCH_TIMEOUT" envDefault:"10s"`
	ActivationGrace   time.Duration `env:"GATEKIT_ACTIVATION_GRACE" envDefault:"2s"`

	HTTPAddr        string        `env:"GATEKIT_HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"GATEKIT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.SubscriptionTTL <= 0 {
		errs = append(errs, fmt.Errorf("GATEKIT_SUBSCRIPTION_TTL must be positive, got %s", c.SubscriptionTTL))
	}
	if c.UsageTTL <= 0 {
		errs = append(errs, fmt.Errorf("GATEKIT_USAGE_TTL must be positive, got %s", c.UsageTTL))
	}
	if c.UsageFetchTimeout < 0 {
		errs = append(errs, fmt.Errorf("GATEKIT_USAGE_FETCH_TIMEOUT must not be negative, got %s", c.UsageFetchTimeout))
	}
	if c.ActivationGrace < 0 {
		errs = append(errs, fmt.Errorf("GATEKIT_ACTIVATION_GRACE must not be negative, got %s", c.ActivationGrace))
	}
	if c.Sessions.IdleTimeout < 0 || c.Sessions.MaxLifetime < 0 || c.Sessions.CleanupInterval < 0 {
		errs = append(errs, errors.New("GATEKIT_SESSION_* durations must not be negative"))
	}
	if c.Redis.Enabled() && c.Account == "" {
		errs = append(errs, errors.New("GATEKIT_ACCOUNT is required when REDIS_URL is set"))
	}
	return errors.Join(errs...)
}
