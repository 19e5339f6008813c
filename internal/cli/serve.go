package cli

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/gatekit/pkg/gateway"
	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/session"
)

func newServeCommand(s *state) *cobra.Command {
	var (
		addr      string
		multiUser bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the entitlement HTTP API",
		Long: `Serve the entitlement HTTP API until interrupted.

By default every request is answered from the session of the configured
account. With --multi-user each request must carry "Authorization: Bearer
<token>"; the first request of a token opens a session that calls the billing
API with that token, and DELETE /session closes it. Prometheus metrics are
exposed at /metrics.`,
		Args: cobra.NoArgs,
		RunE: s.withApp(func(cmd *cobra.Command, _ []string, app *App) error {
			if addr == "" {
				addr = app.Config.HTTPAddr
			}

			handler, release := app.handler(multiUser)
			defer release()

			srvCfg := gateway.DefaultServerConfig(addr)
			srvCfg.ShutdownTimeout = app.Config.ShutdownTimeout

			app.Log.InfoContext(cmd.Context(), "serving entitlements",
				logger.Component("cli"),
				slog.String("addr", addr),
				slog.Bool("multi_user", multiUser),
			)
			return gateway.Serve(cmd.Context(), srvCfg, handler, app.Log)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides GATEKIT_HTTP_ADDR)")
	cmd.Flags().BoolVar(&multiUser, "multi-user", false, "open one session per bearer token instead of using GATEKIT_API_TOKEN")

	return cmd
}

// handler returns the gateway of app. With multiUser, sessions are resolved
// per bearer credential by a registry that release closes.
func (a *App) handler(multiUser bool) (http.Handler, func()) {
	opts := gateway.Options{
		Sessions: gateway.FixedSession(a.Session),
		Metrics:  promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		Ready:    a.ready,
		Logger:   a.Log,
	}

	if !multiUser {
		opts.Ready = append([]func(context.Context) error{sessionReady(a)}, opts.Ready...)
		return gateway.Router(opts), func() {}
	}

	reg := session.NewRegistry(a.opener(), a.Config.Sessions,
		session.WithSessionOptions(a.sessionOptions()...),
		session.WithRegistryTelemetry(a.Telemetry),
	)
	transport := session.NewHeaderTransport("Authorization")

	opts.Sessions = gateway.ContextSession
	router := gateway.Router(opts)
	router.Delete("/session", reg.LogoutHandler(transport).ServeHTTP)

	return reg.Middleware(transport)(router), reg.Close
}

func sessionReady(app *App) func(context.Context) error {
	return func(context.Context) error {
		if app.Session.Closed() {
			return ErrSessionClosed
		}
		return nil
	}
}
