package activation

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/subscription"
	"github.com/dmitrymomot/gatekit/pkg/telemetry"
)

const (
	// DefaultGracePeriod is how long the flow waits after the activation call for
	// billing webhooks to land on the server before re-reading the subscription.
	DefaultGracePeriod = 2 * time.Second
	// DefaultRefreshTimeout bounds the refresh when the caller's context is already done.
	DefaultRefreshTimeout = 10 * time.Second
)

// Activator asks the backend to activate the subscription paid for in a checkout session.
type Activator interface {
	ActivateSubscription(ctx context.Context, sessionID string) error
}

// ActivatorFunc adapts a function to Activator.
type ActivatorFunc func(ctx context.Context, sessionID string) error

func (f ActivatorFunc) ActivateSubscription(ctx context.Context, sessionID string) error {
	return f(ctx, sessionID)
}

// Refresher re-reads the subscription. *subscription.Store implements it.
type Refresher interface {
	Refresh(ctx context.Context) subscription.UserSubscription
}

// Flow runs the post-payment sequence: nudge the backend, wait, re-read.
// The activation call is best effort; the subscription is always refreshed
// afterwards because the webhook may have applied the upgrade on its own.
type Flow struct {
	activator      Activator
	store          Refresher
	grace          time.Duration
	refreshTimeout time.Duration
	sleep          func(ctx context.Context, d time.Duration)
	rec            telemetry.Recorder
}

// New creates a Flow. Panics if activator or store is nil.
func New(activator Activator, store Refresher, opts ...Option) *Flow {
	if activator == nil {
		panic("activation: Activator is required")
	}
	if store == nil {
		panic("activation: Refresher is required")
	}

	f := &Flow{
		activator:      activator,
		store:          store,
		grace:          DefaultGracePeriod,
		refreshTimeout: DefaultRefreshTimeout,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.rec = telemetry.OrNop(f.rec)
	return f
}

// ActivateAfterPayment calls the activation endpoint with the optional checkout
// session ID, waits the grace period and refreshes the subscription store.
// It returns true only when the activation call succeeded. The refresh happens
// either way, including when ctx is cancelled during the wait.
func (f *Flow) ActivateAfterPayment(ctx context.Context, sessionID string) bool {
	started := time.Now()
	err := f.activator.ActivateSubscription(ctx, sessionID)

	f.sleep(ctx, f.grace)

	refreshCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		refreshCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), f.refreshTimeout)
		defer cancel()
	}
	sub := f.store.Refresh(refreshCtx)

	attrs := []slog.Attr{
		logger.Component("activation"),
		logger.Tier(sub.Tier),
		slog.Bool("active", sub.IsActive),
		logger.Duration(time.Since(started)),
	}
	if sessionID != "" {
		attrs = append(attrs, slog.String("checkout_session", sessionID))
	}

	if err != nil {
		f.rec.Record(ctx, telemetry.ActivationFailed, append(attrs, logger.Error(err))...)
		return false
	}
	f.rec.Record(ctx, telemetry.ActivationSucceeded, attrs...)
	return true
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
