// Package telemetry turns named engine events into leveled log records and Prometheus counters.
//
// Fail-open paths in the engine never surface errors to callers; these events are how
// an operator still sees that the billing API is down or that users are being served
// fallback entitlements.
package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/gatekit/pkg/logger"
)

// Event is a named, leveled occurrence.
type Event struct {
	Name  string
	Level slog.Level
}

var (
	SubscriptionFetched       = Event{Name: "subscription.fetched", Level: slog.LevelDebug}
	SubscriptionFetchFailed   = Event{Name: "subscription.fetch_failed", Level: slog.LevelWarn}
	SubscriptionFallbackFree  = Event{Name: "subscription.fallback_free", Level: slog.LevelError}
	SubscriptionStaleServed   = Event{Name: "subscription.stale_served", Level: slog.LevelWarn}
	SubscriptionFetchDropped  = Event{Name: "subscription.fetch_discarded", Level: slog.LevelInfo}
	SubscriptionInvalidated   = Event{Name: "subscription.invalidated", Level: slog.LevelInfo}
	SubscriptionPartialLimits = Event{Name: "subscription.partial_limits", Level: slog.LevelInfo}
	SubscriptionUnknownTier   = Event{Name: "subscription.unknown_tier", Level: slog.LevelWarn}

	UsageFetchFailed = Event{Name: "usage.fetch_failed", Level: slog.LevelWarn}

	EntitlementDenied  = Event{Name: "entitlement.denied", Level: slog.LevelInfo}
	EntitlementUnknown = Event{Name: "entitlement.unknown_feature", Level: slog.LevelWarn}

	ActivationSucceeded = Event{Name: "activation.succeeded", Level: slog.LevelInfo}
	ActivationFailed    = Event{Name: "activation.failed", Level: slog.LevelError}

	SessionOpened     = Event{Name: "session.opened", Level: slog.LevelInfo}
	SessionOpenFailed = Event{Name: "session.open_failed", Level: slog.LevelError}
	SessionExpired    = Event{Name: "session.expired", Level: slog.LevelInfo}
	SessionClosed     = Event{Name: "session.closed", Level: slog.LevelInfo}
)

// Recorder receives engine events.
type Recorder interface {
	Record(ctx context.Context, ev Event, attrs ...slog.Attr)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event, ...slog.Attr) {}

// Nop returns a Recorder that drops every event.
func Nop() Recorder { return nopRecorder{} }

// OrNop returns r, or a Nop recorder when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop()
	}
	return r
}

// Telemetry logs events through slog and counts them in gatekit_events_total.
type Telemetry struct {
	log    *slog.Logger
	events *prometheus.CounterVec
}

// New creates a Telemetry. A nil logger disables logging; a nil registerer disables metrics.
// Registering twice on the same registry reuses the existing counter.
func New(log *slog.Logger, reg prometheus.Registerer) (*Telemetry, error) {
	t := &Telemetry{log: logger.OrNop(log)}
	if reg == nil {
		return t, nil
	}

	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatekit",
			Name:      "events_total",
			Help:      "Entitlement engine events by name and level",
		},
		[]string{"event", "level"},
	)
	if err := reg.Register(events); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, errors.Join(ErrRegisterMetrics, err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, errors.Join(ErrRegisterMetrics, err)
		}
		events = existing
	}
	t.events = events
	return t, nil
}

// Record logs ev at its level and increments its counter.
func (t *Telemetry) Record(ctx context.Context, ev Event, attrs ...slog.Attr) {
	if t.events != nil {
		t.events.WithLabelValues(ev.Name, ev.Level.String()).Inc()
	}
	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, logger.Event(ev.Name))
	all = append(all, attrs...)
	t.log.LogAttrs(ctx, ev.Level, ev.Name, all...)
}
