package subscription_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/pkg/subscription"
	"github.com/dmitrymomot/gatekit/pkg/telemetry"
	"github.com/dmitrymomot/gatekit/pkg/tier"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) FetchCurrentSubscription(ctx context.Context) (*subscription.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Snapshot), args.Error(1)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errBackend = errors.New("billing api: 503")

func snapshot(t string, active bool) *subscription.Snapshot {
	return &subscription.Snapshot{Tier: t, IsActive: active}
}

func TestStore_Get(t *testing.T) {
	t.Parallel()

	t.Run("serves cached value within ttl", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		p := &mockProvider{}
		p.On("FetchCurrentSubscription", mock.Anything).Return(snapshot("pro", true), nil).Once()

		s := subscription.NewStore(p, subscription.WithClock(clk.Now))
		defer s.Close()

		first := s.Get(context.Background())
		clk.Advance(4 * time.Minute)
		second := s.Get(context.Background())

		assert.Equal(t, tier.Pro, first.Tier)
		assert.Equal(t, subscription.SourceProvider, first.Source)
		assert.Equal(t, first, second)
		p.AssertExpectations(t)
	})

	t.Run("refetches once ttl elapsed", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		p := &mockProvider{}
		p.On("FetchCurrentSubscription", mock.Anything).Return(snapshot("free", true), nil).Once()
		p.On("FetchCurrentSubscription", mock.Anything).Return(snapshot("business", true), nil).Once()

		s := subscription.NewStore(p, subscription.WithClock(clk.Now), subscription.WithTTL(time.Minute))
		defer s.Close()

		assert.Equal(t, tier.Free, s.Get(context.Background()).Tier)
		clk.Advance(time.Minute)
		assert.Equal(t, tier.Business, s.Get(context.Background()).Tier)
		p.AssertExpectations(t)
	})

	t.Run("concurrent callers share one fetch", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		release := make(chan struct{})
		p := subscription.ProviderFunc(func(ctx context.Context) (*subscription.Snapshot, error) {
			calls.Add(1)
			<-release
			return snapshot("pro", true), nil
		})

		s := subscription.NewStore(p)
		defer s.Close()

		var wg sync.WaitGroup
		got := make([]subscription.UserSubscription, 10)
		for i := range got {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				got[i] = s.Get(context.Background())
			}(i)
		}

		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
		time.Sleep(10 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, sub := range got {
			assert.Equal(t, tier.Pro, sub.Tier)
		}
	})
}

func TestStore_FailOpen(t *testing.T) {
	t.Parallel()

	t.Run("first load failure serves free fallback without caching it", func(t *testing.T) {
		t.Parallel()
		rec := &telemetry.Memory{}
		p := &mockProvider{}
		p.On("FetchCurrentSubscription", mock.Anything).Return(nil, errBackend).Once()
		p.On("FetchCurrentSubscription", mock.Anything).Return(snapshot("pro", true), nil).Once()

		s := subscription.NewStore(p, subscription.WithTelemetry(rec))
		defer s.Close()

		sub := s.Get(context.Background())
		assert.Equal(t, tier.Free, sub.Tier)
		assert.True(t, sub.IsActive)
		assert.Equal(t, subscription.SourceFallback, sub.Source)
		assert.Equal(t, tier.LimitsFor(tier.Free), sub.Limits)

		_, cached := s.Current()
		assert.False(t, cached)

		assert.Equal(t, tier.Pro, s.Get(context.Background()).Tier)
		assert.Equal(t, 1, rec.Count(telemetry.SubscriptionFetchFailed))
		assert.Equal(t, 1, rec.Count(telemetry.SubscriptionFallbackFree))
		p.AssertExpectations(t)
	})

	t.Run("failed refetch serves the stale value", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		rec := &telemetry.Memory{}
		p := &mockProvider{}
		p.On("FetchCurrentSubscription", mock.Anything).Return(snapshot("business", true), nil).Once()
		p.On("FetchCurrentSubscription", mock.Anything).Return(nil, errBackend)

		s := subscription.NewStore(p, subscription.WithClock(clk.Now), subscription.WithTelemetry(rec))
		defer s.Close()

		require.Equal(t, tier.Business, s.Get(context.Background()).Tier)
		clk.Advance(24 * time.Hour)

		sub := s.Get(context.Background())
		assert.Equal(t, tier.Business, sub.Tier)
		assert.Equal(t, subscription.SourceProvider, sub.Source)
		assert.Equal(t, 1, rec.Count(telemetry.SubscriptionStaleServed))
	})

	t.Run("nil snapshot counts as failure", func(t *testing.T) {
		t.Parallel()
		p := &mockProvider{}
		p.On("FetchCurrentSubscription", mock.Anything).Return(nil, nil)

		s := subscription.NewStore(p)
		defer s.Close()

		assert.Equal(t, subscription.SourceFallback, s.Get(context.Background()).Source)
	})

	t.Run("caller deadline does not cancel the shared fetch", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		p := subscription.ProviderFunc(func(ctx context.Context) (*subscription.Snapshot, error) {
			<-release
			return snapshot("pro", true), nil
		})

		s := subscription.NewStore(p)
		defer s.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		assert.Equal(t, subscription.SourceFallback, s.Get(ctx).Source)

		close(release)
		require.Eventually(t, func() bool {
			_, ok := s.Current()
			return ok
		}, time.Second, time.Millisecond)

		cur, _ := s.Current()
		assert.Equal(t, tier.Pro, cur.Tier)
	})
}

func TestStore_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("bypasses a fresh cache", func(t *testing.T) {
		t.Parallel()
		p := &mockProvider{}
		p.On("FetchCurrentSubscription", mock.Anything).Return(snapshot("free", true), nil).Once()
		p.On("FetchCurrentSubscription", mock.Anything).Return(snapshot("pro", true), nil).Once()

		s := subscription.NewStore(p)
		defer s.Close()

		require.Equal(t, tier.Free, s.Get(context.Background()).Tier)
		assert.Equal(t, tier.Pro, s.Refresh(context.Background()).Tier)
		assert.Equal(t, tier.Pro, s.Get(context.Background()).Tier)
		p.AssertExpectations(t)
	})

	t.Run("result of a fetch started before refresh is not cached", func(t *testing.T) {
		t.Parallel()
		rec := &telemetry.Memory{}
		var calls atomic.Int32
		started := make(chan struct{})
		release := make(chan struct{})
		p := subscription.ProviderFunc(func(ctx context.Context) (*subscription.Snapshot, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
				return snapshot("free", true), nil
			}
			return snapshot("business", true), nil
		})

		s := subscription.NewStore(p, subscription.WithTelemetry(rec))
		defer s.Close()

		done := make(chan subscription.UserSubscription)
		go func() { done <- s.Get(context.Background()) }()
		<-started

		assert.Equal(t, tier.Business, s.Refresh(context.Background()).Tier)

		close(release)
		assert.Equal(t, tier.Free, (<-done).Tier)

		assert.Equal(t, tier.Business, s.Get(context.Background()).Tier)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, 1, rec.Count(telemetry.SubscriptionFetchDropped))
	})
}

func TestStore_Invalidate(t *testing.T) {
	t.Parallel()

	p := &mockProvider{}
	p.On("FetchCurrentSubscription", mock.Anything).Return(snapshot("pro", true), nil).Twice()

	s := subscription.NewStore(p)
	defer s.Close()

	s.Get(context.Background())
	s.Invalidate(context.Background())

	_, cached := s.Current()
	assert.False(t, cached)

	s.Get(context.Background())
	p.AssertExpectations(t)
}

func TestStore_Close(t *testing.T) {
	t.Parallel()

	t.Run("cancels the fetch in flight", func(t *testing.T) {
		t.Parallel()
		started := make(chan struct{})
		var cancelled atomic.Bool
		p := subscription.ProviderFunc(func(ctx context.Context) (*subscription.Snapshot, error) {
			close(started)
			<-ctx.Done()
			cancelled.Store(true)
			return nil, ctx.Err()
		})

		s := subscription.NewStore(p)

		done := make(chan subscription.UserSubscription)
		go func() { done <- s.Get(context.Background()) }()
		<-started

		s.Close()

		sub := <-done
		assert.Equal(t, subscription.SourceFallback, sub.Source)
		assert.True(t, cancelled.Load())
	})

	t.Run("closed store never calls the provider", func(t *testing.T) {
		t.Parallel()
		p := &mockProvider{}
		p.On("FetchCurrentSubscription", mock.Anything).Return(snapshot("business", true), nil).Once()

		s := subscription.NewStore(p)
		require.Equal(t, tier.Business, s.Get(context.Background()).Tier)

		s.Close()
		s.Close()

		assert.Equal(t, tier.Free, s.Get(context.Background()).Tier)
		assert.Equal(t, tier.Free, s.Refresh(context.Background()).Tier)
		s.Invalidate(context.Background())

		_, cached := s.Current()
		assert.False(t, cached)
		p.AssertNumberOfCalls(t, "FetchCurrentSubscription", 1)
	})
}

func TestStore_UnknownTierResolvesToFree(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Memory{}
	p := &mockProvider{}
	p.On("FetchCurrentSubscription", mock.Anything).Return(snapshot("enterprise", true), nil)

	s := subscription.NewStore(p, subscription.WithTelemetry(rec))
	defer s.Close()

	sub := s.Get(context.Background())
	assert.Equal(t, tier.Free, sub.Tier)
	assert.Equal(t, subscription.SourceProvider, sub.Source)
	assert.Equal(t, 1, rec.Count(telemetry.SubscriptionUnknownTier))
}

func TestNewStore_NilProviderPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { subscription.NewStore(nil) })
}
