package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/gatekit/pkg/telemetry"
)

type options struct {
	id              uuid.UUID
	now             func() time.Time
	rec             telemetry.Recorder
	parent          context.Context
	subscriptionTTL time.Duration
	usageTTL        time.Duration
	usageTimeout    time.Duration
	grace           *time.Duration
}

// Option configures a Session.
type Option func(*options)

// WithID sets the session ID instead of generating a random one.
func WithID(id uuid.UUID) Option {
	return func(o *options) {
		if id != uuid.Nil {
			o.id = id
		}
	}
}

func WithTelemetry(rec telemetry.Recorder) Option {
	return func(o *options) { o.rec = rec }
}

// WithClock replaces time.Now in the store and the counter.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithParentContext makes backend fetches inherit values and cancellation from ctx.
func WithParentContext(ctx context.Context) Option {
	return func(o *options) { o.parent = ctx }
}

// WithSubscriptionTTL overrides subscription.DefaultTTL.
func WithSubscriptionTTL(ttl time.Duration) Option {
	return func(o *options) { o.subscriptionTTL = ttl }
}

// WithUsageTTL overrides usage.DefaultTTL.
func WithUsageTTL(ttl time.Duration) Option {
	return func(o *options) { o.usageTTL = ttl }
}

// WithUsageFetchTimeout overrides usage.DefaultFetchTimeout.
func WithUsageFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.usageTimeout = d }
}

// WithGracePeriod overrides activation.DefaultGracePeriod.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) { o.grace = &d }
}
