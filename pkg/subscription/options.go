package subscription

import (
	"context"
	"time"

	"github.com/dmitrymomot/gatekit/pkg/telemetry"
)

type options struct {
	ttl    time.Duration
	now    func() time.Time
	rec    telemetry.Recorder
	parent context.Context
}

// Option configures a Store.
type Option func(*options)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
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

// WithParentContext derives the context of provider calls from ctx instead of
// context.Background. Values such as auth tokens and trace IDs flow through it;
// cancelling it has the same effect on fetches as Close.
func WithParentContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.parent = ctx
		}
	}
}
