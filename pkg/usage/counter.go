package usage

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/gatekit/pkg/cache"
	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/telemetry"
)

const (
	// DefaultTTL is how long a fetched count is served without asking the backend again.
	DefaultTTL = 5 * time.Minute
	// DefaultCapacity bounds the number of resource keys kept per session.
	DefaultCapacity = 1024
	// DefaultFetchTimeout bounds one backend call, whoever is waiting on it.
	DefaultFetchTimeout = 10 * time.Second
)

// Fetcher returns the live count of a resource.
type Fetcher interface {
	FetchResourceCount(ctx context.Context, key string) (int64, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, key string) (int64, error)

func (f FetcherFunc) FetchResourceCount(ctx context.Context, key string) (int64, error) {
	return f(ctx, key)
}

// Counter caches resource counts per key. It fails open: when the backend
// cannot be reached it serves the last known count, or zero if there is none.
type Counter struct {
	fetcher Fetcher
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	rec     telemetry.Recorder

	entries *cache.LRU[string, cache.Entry[int64]]
	flights singleflight.Group

	life   context.Context // cancelled by Close; bounds every fetch
	cancel context.CancelFunc

	mu         sync.Mutex // guards generation, keyGens, closed and writes into entries
	generation uint64
	keyGens    map[string]uint64 // bumped by Invalidate; reset with generation
	closed     bool
}

// NewCounter creates a Counter backed by fetcher. Panics if fetcher is nil.
func NewCounter(fetcher Fetcher, opts ...Option) *Counter {
	if fetcher == nil {
		panic("usage: Fetcher is required")
	}

	o := options{
		ttl:      DefaultTTL,
		capacity: DefaultCapacity,
		timeout:  DefaultFetchTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	life, cancel := context.WithCancel(context.Background())

	return &Counter{
		fetcher: fetcher,
		ttl:     o.ttl,
		timeout: o.timeout,
		now:     o.now,
		rec:     telemetry.OrNop(o.rec),
		entries: cache.NewLRU[string, cache.Entry[int64]](o.capacity),
		keyGens: make(map[string]uint64),
		life:    life,
		cancel:  cancel,
	}
}

// Get returns the count for key. A fresh cached value is returned without
// calling the backend. Concurrent misses on the same key share one fetch,
// which runs until done even if the caller that started it gives up.
// When ctx ends first, Get returns the cached count or zero.
// Get never fails; see the type comment for the fallback rules.
func (c *Counter) Get(ctx context.Context, key string) int64 {
	if e, ok := c.entries.Get(key); ok && e.IsFresh(c.now()) {
		return e.Value
	}

	c.mu.Lock()
	v := version{gen: c.generation, key: c.keyGens[key]}
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return 0
	}

	ch := c.flights.DoChan(flightKey(v, key), func() (any, error) {
		// a flight that finished while we were queued may have filled the cache
		if e, ok := c.entries.Get(key); ok && e.IsFresh(c.now()) {
			return e.Value, nil
		}
		return c.fetch(ctx, v, key), nil
	})

	select {
	case res := <-ch:
		return res.Val.(int64)
	case <-ctx.Done():
		if e, ok := c.entries.Get(key); ok {
			return e.Value
		}
		return 0
	}
}

// Invalidate drops the cached count for key so the next Get refetches it.
// A fetch of key already in flight still answers its waiters but is not cached,
// and later callers do not join it.
func (c *Counter) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.keyGens[key]++
	c.entries.Remove(key)
}

// Reset drops every cached count. Fetches still in flight will not repopulate the cache.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	clear(c.keyGens)
	c.entries.Clear()
}

// Close cancels fetches in flight and drops every cached count. After Close,
// Get returns zero without calling the Fetcher.
func (c *Counter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	clear(c.keyGens)
	c.entries.Clear()
	c.cancel()
}

// version identifies the cache state a fetch started under.
type version struct {
	gen uint64
	key uint64
}

// fetch keeps the values of the caller's ctx but not its cancellation: other
// callers may be waiting on the same flight. It is bounded by the fetch
// timeout and by Close.
func (c *Counter) fetch(ctx context.Context, v version, key string) int64 {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	stop := context.AfterFunc(c.life, cancel)
	defer stop()

	n, err := c.fetcher.FetchResourceCount(ctx, key)
	if err == nil && n < 0 {
		err = ErrNegativeCount
	}
	if err != nil {
		return c.fallback(ctx, key, err)
	}

	c.mu.Lock()
	if c.generation == v.gen && c.keyGens[key] == v.key {
		c.entries.Put(key, cache.NewEntry(n, c.now(), c.ttl))
	}
	c.mu.Unlock()

	return n
}

func (c *Counter) fallback(ctx context.Context, key string, err error) int64 {
	attrs := []slog.Attr{logger.Component("usage"), logger.Resource(key), logger.Error(err)}

	if e, ok := c.entries.Get(key); ok {
		c.rec.Record(ctx, telemetry.UsageFetchFailed, append(attrs,
			slog.String("served", "stale"),
			slog.Int64("count", e.Value),
			slog.Duration("age", e.Age(c.now())),
		)...)
		return e.Value
	}

	c.rec.Record(ctx, telemetry.UsageFetchFailed, append(attrs, slog.String("served", "zero"))...)
	return 0
}

func flightKey(v version, key string) string {
	return strconv.FormatUint(v.gen, 10) + "." + strconv.FormatUint(v.key, 10) + "/" + key
}
