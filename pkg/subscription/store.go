package subscription

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/gatekit/pkg/async"
	"github.com/dmitrymomot/gatekit/pkg/cache"
	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/telemetry"
)

// DefaultTTL is how long a fetched subscription is served before Get refetches it.
const DefaultTTL = 5 * time.Minute

// Store caches the signed-in user's subscription for one session.
//
// At most one provider fetch is in flight at a time; every caller that arrives
// while it runs waits on the same result. Refresh, Invalidate and Close bump a
// generation counter so a fetch started before them can never repopulate the cache.
//
// Store never returns an error. When the provider fails it serves the last cached
// value, however old, and otherwise the Free fallback. The fallback is not cached,
// so the next Get tries the provider again.
type Store struct {
	provider Provider
	ttl      time.Duration
	now      func() time.Time
	rec      telemetry.Recorder

	ctx    context.Context // parent of every provider call; cancelled by Close
	cancel context.CancelFunc

	mu         sync.Mutex
	current    *cache.Entry[UserSubscription]
	flight     *async.Future[UserSubscription]
	generation uint64
	closed     bool
}

// NewStore creates a Store over provider. Panics if provider is nil.
func NewStore(provider Provider, opts ...Option) *Store {
	if provider == nil {
		panic("subscription: Provider is required")
	}

	o := options{
		ttl:    DefaultTTL,
		now:    time.Now,
		parent: context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(o.parent)

	return &Store{
		provider: provider,
		ttl:      o.ttl,
		now:      o.now,
		rec:      telemetry.OrNop(o.rec),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Get returns the cached subscription while it is fresh and fetches it otherwise.
// If ctx ends before a fetch completes, Get stops waiting and serves the fallback
// rules; the fetch itself keeps running for other callers.
func (s *Store) Get(ctx context.Context) UserSubscription {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Fallback(s.now())
	}
	if s.current != nil && s.current.IsFresh(s.now()) {
		v := s.current.Value
		s.mu.Unlock()
		return v
	}
	f := s.flight
	if f == nil || f.IsComplete() {
		f = s.startLocked()
	}
	s.mu.Unlock()

	return s.await(ctx, f)
}

// Refresh drops the cached subscription and fetches a new one. Any Get issued
// after Refresh returns observes the refreshed value or a later one.
func (s *Store) Refresh(ctx context.Context) UserSubscription {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Fallback(s.now())
	}
	s.resetLocked()
	f := s.startLocked()
	s.mu.Unlock()

	return s.await(ctx, f)
}

// Invalidate drops the cached subscription without fetching. A fetch in flight
// still completes for its waiters but its result is discarded.
func (s *Store) Invalidate(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.resetLocked()
	s.mu.Unlock()

	s.rec.Record(ctx, telemetry.SubscriptionInvalidated, logger.Component("subscription"))
}

// Current returns the cached subscription, fresh or not, without fetching.
func (s *Store) Current() (UserSubscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return UserSubscription{}, false
	}
	return s.current.Value, true
}

// Close cancels the fetch in flight and drops the cache. After Close every
// call returns the Free fallback without contacting the provider.
// Close is idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.resetLocked()
	s.cancel()
}

func (s *Store) resetLocked() {
	s.generation++
	s.current = nil
	s.flight = nil
}

func (s *Store) startLocked() *async.Future[UserSubscription] {
	f := async.Async(s.ctx, s.generation, s.fetch)
	s.flight = f
	return f
}

func (s *Store) fetch(ctx context.Context, gen uint64) (UserSubscription, error) {
	started := s.now()
	snap, err := s.provider.FetchCurrentSubscription(ctx)
	if err == nil && snap == nil {
		err = ErrEmptySnapshot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stale := s.generation != gen
	if !stale {
		s.flight = nil
	}

	if err != nil {
		if !stale {
			s.rec.Record(ctx, telemetry.SubscriptionFetchFailed,
				logger.Component("subscription"),
				logger.Error(err),
				logger.Duration(s.now().Sub(started)),
			)
		}
		return UserSubscription{}, err
	}

	now := s.now()
	sub, rerr := Resolve(*snap, now)
	if rerr != nil {
		s.rec.Record(ctx, telemetry.SubscriptionUnknownTier,
			logger.Component("subscription"),
			slog.String("raw_tier", snap.Tier),
		)
	}
	if !snap.Limits.Empty() {
		s.rec.Record(ctx, telemetry.SubscriptionPartialLimits,
			logger.Component("subscription"),
			logger.Tier(sub.Tier),
		)
	}

	if s.closed {
		return UserSubscription{}, ErrStoreClosed
	}
	if stale {
		// waiters of this flight get the value; the cache does not
		s.rec.Record(ctx, telemetry.SubscriptionFetchDropped,
			logger.Component("subscription"),
			slog.Uint64("generation", gen),
		)
		return sub, nil
	}

	entry := cache.NewEntry(sub, now, s.ttl)
	s.current = &entry
	s.rec.Record(ctx, telemetry.SubscriptionFetched,
		logger.Component("subscription"),
		logger.Tier(sub.Tier),
		slog.Bool("active", sub.IsActive),
		logger.Duration(now.Sub(started)),
	)
	return sub, nil
}

func (s *Store) await(ctx context.Context, f *async.Future[UserSubscription]) UserSubscription {
	sub, err := f.AwaitContext(ctx)
	if err == nil {
		return sub
	}

	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()

	if cur != nil {
		s.rec.Record(ctx, telemetry.SubscriptionStaleServed,
			logger.Component("subscription"),
			logger.Error(err),
			logger.Tier(cur.Value.Tier),
			slog.Duration("age", cur.Age(s.now())),
		)
		return cur.Value
	}

	s.rec.Record(ctx, telemetry.SubscriptionFallbackFree,
		logger.Component("subscription"),
		logger.Error(err),
	)
	return Fallback(s.now())
}
