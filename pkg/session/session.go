package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/gatekit/pkg/activation"
	"github.com/dmitrymomot/gatekit/pkg/entitlement"
	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/subscription"
	"github.com/dmitrymomot/gatekit/pkg/telemetry"
	"github.com/dmitrymomot/gatekit/pkg/usage"
)

// Deps are the backend collaborators of a session. Every field is required.
type Deps struct {
	Subscriptions subscription.Provider
	Counts        usage.Fetcher
	Activator     activation.Activator
}

// Session owns the entitlement state of one signed-in user. It is created at
// login and closed at logout; nothing is shared between sessions.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time

	Store       *subscription.Store
	Usage       *usage.Counter
	Entitlement *entitlement.Evaluator
	Activation  *activation.Flow

	rec       telemetry.Recorder
	closeOnce sync.Once
	closed    chan struct{}
}

// New wires a session over deps.
func New(deps Deps, opts ...Option) (*Session, error) {
	if deps.Subscriptions == nil || deps.Counts == nil || deps.Activator == nil {
		return nil, ErrMissingDependency
	}

	o := options{
		id:  uuid.New(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	rec := telemetry.OrNop(o.rec)

	s := &Session{
		ID:        o.id,
		StartedAt: o.now(),
		rec:       rec,
		closed:    make(chan struct{}),
	}

	storeOpts := []subscription.Option{
		subscription.WithClock(o.now),
		subscription.WithTelemetry(rec),
	}
	if o.subscriptionTTL > 0 {
		storeOpts = append(storeOpts, subscription.WithTTL(o.subscriptionTTL))
	}
	if o.parent != nil {
		storeOpts = append(storeOpts, subscription.WithParentContext(o.parent))
	}
	s.Store = subscription.NewStore(deps.Subscriptions, storeOpts...)

	usageOpts := []usage.Option{
		usage.WithClock(o.now),
		usage.WithTelemetry(rec),
	}
	if o.usageTTL > 0 {
		usageOpts = append(usageOpts, usage.WithTTL(o.usageTTL))
	}
	if o.usageTimeout > 0 {
		usageOpts = append(usageOpts, usage.WithFetchTimeout(o.usageTimeout))
	}
	s.Usage = usage.NewCounter(deps.Counts, usageOpts...)

	s.Entitlement = entitlement.New(s.Store, s.Usage, entitlement.WithTelemetry(rec))

	flowOpts := []activation.Option{activation.WithTelemetry(rec)}
	if o.grace != nil {
		flowOpts = append(flowOpts, activation.WithGracePeriod(*o.grace))
	}
	s.Activation = activation.New(guardedActivator{next: deps.Activator, closed: s.closed}, s.Store, flowOpts...)

	return s, nil
}

// Close ends the session: fetches in flight are cancelled and every cache is
// dropped. The session stays usable afterwards but only serves fail-open values
// and never reaches the backend again. Close is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.Store.Close()
		s.Usage.Close()
		s.rec.Record(context.Background(), telemetry.SessionClosed,
			logger.Component("session"),
			logger.SessionID(s.ID),
			logger.Duration(time.Since(s.StartedAt)),
		)
	})
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// guardedActivator stops activation calls once the session is closed.
type guardedActivator struct {
	next   activation.Activator
	closed <-chan struct{}
}

func (g guardedActivator) ActivateSubscription(ctx context.Context, sessionID string) error {
	select {
	case <-g.closed:
		return ErrClosed
	default:
	}
	return g.next.ActivateSubscription(ctx, sessionID)
}
