package usage

import (
	"time"

	"github.com/dmitrymomot/gatekit/pkg/telemetry"
)

type options struct {
	ttl      time.Duration
	capacity int
	timeout  time.Duration
	now      func() time.Time
	rec      telemetry.Recorder
}

// Option configures a Counter.
type Option func(*options)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithCapacity overrides DefaultCapacity. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithFetchTimeout overrides DefaultFetchTimeout. Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithTelemetry(rec telemetry.Recorder) Option {
	return func(o *options) { o.rec = rec }
}
