package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/gatekit/pkg/billingapi"
	"github.com/dmitrymomot/gatekit/pkg/config"
	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/redis"
	"github.com/dmitrymomot/gatekit/pkg/session"
	"github.com/dmitrymomot/gatekit/pkg/telemetry"
	"github.com/dmitrymomot/gatekit/pkg/usage"
)

// App is one fully wired gatekit process: a billing API client, an optional
// Redis count source and the session built over them.
type App struct {
	Config    config.Config
	Log       *slog.Logger
	Registry  *prometheus.Registry
	Telemetry *telemetry.Telemetry
	Client    *billingapi.Client
	Session   *session.Session

	// Counts is set when usage counts come from Redis.
	Counts *redis.CountSource

	httpClient *http.Client
	ready      []func(context.Context) error
	closers    []func() error
}

type buildOptions struct {
	redisCounts bool
	httpClient  *http.Client
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger, bo buildOptions) (*App, error) {
	app := &App{
		Config:     cfg,
		Log:        log,
		Registry:   prometheus.NewRegistry(),
		httpClient: bo.httpClient,
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tel, err := telemetry.New(log, app.Registry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	app.Telemetry = tel

	client, err := app.newClient(cfg.API)
	if err != nil {
		return nil, err
	}
	app.Client = client
	if err := client.RegisterMetrics(app.Registry); err != nil {
		return nil, fmt.Errorf("billing api metrics: %w", err)
	}

	var counts usage.Fetcher = client
	if bo.redisCounts {
		if !cfg.Redis.Enabled() {
			return nil, ErrRedisNotConfigured
		}
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, rdb.Close)
		app.ready = append(app.ready, redis.Healthcheck(rdb))

		src, err := redis.NewCountSource(rdb, cfg.Redis.CountPrefix, cfg.Account)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Counts = src
		counts = src
		log.DebugContext(ctx, "usage counts served from redis",
			logger.Component("cli"),
			slog.String("prefix", cfg.Redis.CountPrefix),
		)
	}

	sess, err := session.New(session.Deps{
		Subscriptions: client,
		Counts:        counts,
		Activator:     client,
	}, app.sessionOptions()...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Session = sess

	return app, nil
}

func (a *App) newClient(cfg billingapi.Config) (*billingapi.Client, error) {
	opts := []billingapi.Option{billingapi.WithLogger(a.Log)}
	if a.httpClient != nil {
		opts = append(opts, billingapi.WithHTTPClient(a.httpClient))
	}
	return billingapi.New(cfg, opts...)
}

func (a *App) sessionOptions() []session.Option {
	return []session.Option{
		session.WithTelemetry(a.Telemetry),
		session.WithSubscriptionTTL(a.Config.SubscriptionTTL),
		session.WithUsageTTL(a.Config.UsageTTL),
		session.WithUsageFetchTimeout(a.Config.UsageFetchTimeout),
		session.WithGracePeriod(a.Config.ActivationGrace),
	}
}

// opener gives every signed-in user a billing API client that authenticates
// with the user's own bearer credential. Usage counts come from the same client.
func (a *App) opener() session.Opener {
	return func(_ context.Context, token string) (session.Deps, error) {
		cfg := a.Config.API
		cfg.Token = token
		client, err := a.newClient(cfg)
		if err != nil {
			return session.Deps{}, err
		}
		return session.Deps{Subscriptions: client, Counts: client, Activator: client}, nil
	}
}

// Close ends the session and releases every connection the app opened.
func (a *App) Close() error {
	if a.Session != nil {
		a.Session.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
