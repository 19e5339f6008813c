package activation

import (
	"context"
	"time"

	"github.com/dmitrymomot/gatekit/pkg/telemetry"
)

// Option configures a Flow.
type Option func(*Flow)

// WithGracePeriod overrides DefaultGracePeriod. Zero disables the wait.
func WithGracePeriod(d time.Duration) Option {
	return func(f *Flow) {
		if d >= 0 {
			f.grace = d
		}
	}
}

// WithRefreshTimeout overrides DefaultRefreshTimeout. Non-positive values are ignored.
func WithRefreshTimeout(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.refreshTimeout = d
		}
	}
}

// WithSleeper replaces the grace period wait, mostly for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(f *Flow) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

func WithTelemetry(rec telemetry.Recorder) Option {
	return func(f *Flow) { f.rec = rec }
}
