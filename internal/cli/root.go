package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/gatekit/pkg/config"
	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/requestid"
	"github.com/dmitrymomot/gatekit/pkg/session"
)

// Option configures NewRootCommand.
type Option func(*state)

// WithConfig makes the commands use cfg instead of reading the environment.
func WithConfig(cfg config.Config) Option {
	return func(s *state) {
		s.preset = &cfg
	}
}

// WithLogOutput sets where log records go. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(s *state) {
		if w != nil {
			s.logOut = w
		}
	}
}

// WithHTTPClient sets the HTTP client used to reach the billing API.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *state) {
		s.httpClient = hc
	}
}

// state is shared by the root command and its subcommands.
type state struct {
	envFiles    []string
	redisCounts bool
	logLevel    string
	logFormat   string
	jsonOut     bool

	preset     *config.Config
	logOut     io.Writer
	httpClient *http.Client

	cfg config.Config
	log *slog.Logger
}

// NewRootCommand builds the gatectl command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	s := &state{logOut: os.Stderr}
	for _, opt := range opts {
		opt(s)
	}

	root := &cobra.Command{
		Use:   "gatectl",
		Short: "Inspect and serve subscription entitlements",
		Long: `gatectl evaluates what the current subscription allows.

It reads the subscription and usage counts from the billing API, or usage
counts from Redis with --redis-counts, and answers feature and quota checks
the same way the embedded library does.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: s.setup,
	}

	f := root.PersistentFlags()
	f.StringSliceVar(&s.envFiles, "env-file", nil, ".env files to load before reading the environment")
	f.BoolVar(&s.redisCounts, "redis-counts", false, "read usage counts from Redis instead of the billing API")
	f.StringVar(&s.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides GATEKIT_LOG_LEVEL)")
	f.StringVar(&s.logFormat, "log-format", "", "log format: text or json (overrides GATEKIT_LOG_FORMAT)")
	f.BoolVar(&s.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newCheckCommand(s),
		newQuotaCommand(s),
		newStatusCommand(s),
		newRefreshCommand(s),
		newActivateCommand(s),
		newServeCommand(s),
		newCountsCommand(s),
	)

	return root
}

func (s *state) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, s.logLevel, s.logFormat, s.logOut)
	if err != nil {
		return err
	}

	s.cfg, s.log = cfg, log
	log.DebugContext(cmd.Context(), "configuration loaded",
		logger.Component("cli"),
		slog.String("command", cmd.Name()),
		slog.String("api_url", cfg.API.BaseURL),
		slog.Bool("redis_counts", s.redisCounts),
	)
	return nil
}

func (s *state) loadConfig() (config.Config, error) {
	if s.preset != nil {
		return *s.preset, nil
	}
	if len(s.envFiles) > 0 {
		if err := config.LoadEnv(s.envFiles...); err != nil {
			return config.Config{}, err
		}
	}
	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// withApp builds the app for one command run and closes it afterwards.
// The session is attached to the command context.
func (s *state) withApp(run func(cmd *cobra.Command, args []string, app *App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := build(cmd.Context(), s.cfg, s.log, buildOptions{
			redisCounts: s.redisCounts,
			httpClient:  s.httpClient,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				s.log.WarnContext(cmd.Context(), "failed to release resources",
					logger.Component("cli"),
					logger.Error(err),
				)
			}
		}()

		cmd.SetContext(session.WithSession(cmd.Context(), app.Session))
		return run(cmd, args, app)
	}
}

func newLogger(cfg config.Config, level, format string, out io.Writer) (*slog.Logger, error) {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Environment, cfg.ServiceName),
		logger.WithOutput(out),
		logger.WithContextValue("session_id", session.IDKey{}),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}

	if level == "" {
		level = cfg.LogLevel
	}
	if level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
		}
		opts = append(opts, logger.WithLevel(l))
	}

	if format == "" {
		format = cfg.LogFormat
	}
	if format != "" {
		switch f := logger.Format(strings.ToLower(format)); f {
		case logger.FormatJSON, logger.FormatText:
			opts = append(opts, logger.WithFormat(f))
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogFormat, format)
		}
	}

	return logger.New(opts...), nil
}
