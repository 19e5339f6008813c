package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/pkg/config"
	"github.com/dmitrymomot/gatekit/pkg/session"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GATEKIT_API_URL", "http://localhost:9000")

	var cfg config.Config
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "http://localhost:9000", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.MaxRetries)
	assert.Equal(t, uint32(5), cfg.API.BreakerFailures)
	assert.Equal(t, 5*time.Minute, cfg.SubscriptionTTL)
	assert.Equal(t, 5*time.Minute, cfg.UsageTTL)
	assert.Equal(t, 10*time.Second, cfg.UsageFetchTimeout)
	assert.Equal(t, 2*time.Second, cfg.ActivationGrace)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "gatekit:usage", cfg.Redis.CountPrefix)
	assert.Equal(t, session.DefaultRegistryConfig(), cfg.Sessions)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("GATEKIT_API_URL", "")

	var cfg config.Config
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("GATEKIT_API_URL", "http://localhost:9000")
	t.Setenv("GATEKIT_USAGE_TTL", "0s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	var cfg config.Config
	err := config.Load(&cfg)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "GATEKIT_USAGE_TTL")
	assert.Contains(t, err.Error(), "GATEKIT_ACCOUNT")
}

func TestLoad_NilPointer(t *testing.T) {
	assert.ErrorIs(t, config.Load[config.Config](nil), config.ErrNilPointer)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("GATEKIT_API_URL", "")
	t.Setenv("GATEKIT_API_TOKEN", "")
	t.Setenv("GATEKIT_SUBSCRIPTION_TTL", "")
	// t.Setenv restores the originals; unset values let the file apply
	unset(t, "GATEKIT_API_URL", "GATEKIT_API_TOKEN", "GATEKIT_SUBSCRIPTION_TTL")

	require.NoError(t, config.LoadEnv("testdata/.env.test"))

	var cfg config.Config
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "https://billing.example.com/v1", cfg.API.BaseURL)
	assert.Equal(t, "file token", cfg.API.Token)
	assert.Equal(t, 90*time.Second, cfg.SubscriptionTTL)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	err := config.LoadEnv("testdata/does-not-exist.env")
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}

func TestMustLoad(t *testing.T) {
	t.Setenv("GATEKIT_API_URL", "")

	var cfg config.Config
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}
