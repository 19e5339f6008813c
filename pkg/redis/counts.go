package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the subset of go-redis commands CountSource uses. *redis.Client,
// *redis.ClusterClient and redis.UniversalClient all satisfy it.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd
}

// CountSource reads usage counts that other services maintain in Redis.
// It implements usage.Fetcher. Keys are namespaced as
// {prefix}:{account}:{resource key}, e.g. "gatekit:usage:acc_1:photos:svc_9".
// A missing key counts as zero.
type CountSource struct {
	kv      KV
	prefix  string
	account string
}

// NewCountSource creates a CountSource for one account. An empty prefix
// defaults to "gatekit:usage".
func NewCountSource(kv KV, prefix, account string) (*CountSource, error) {
	if kv == nil {
		return nil, ErrNilClient
	}
	if account == "" {
		return nil, ErrEmptyAccount
	}
	if prefix == "" {
		prefix = "gatekit:usage"
	}
	return &CountSource{kv: kv, prefix: strings.TrimSuffix(prefix, ":"), account: account}, nil
}

// FetchResourceCount returns the stored count of key.
func (s *CountSource) FetchResourceCount(ctx context.Context, key string) (int64, error) {
	raw, err := s.kv.Get(ctx, s.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidCount, key, err)
	}
	return n, nil
}

// SetCount overwrites the stored count of key.
func (s *CountSource) SetCount(ctx context.Context, key string, n int64) error {
	return s.kv.Set(ctx, s.Key(key), n, 0).Err()
}

// Add changes the stored count of key by delta and returns the new count.
func (s *CountSource) Add(ctx context.Context, key string, delta int64) (int64, error) {
	return s.kv.IncrBy(ctx, s.Key(key), delta).Result()
}

// Key returns the namespaced Redis key of a usage key.
func (s *CountSource) Key(key string) string {
	return s.prefix + ":" + s.account + ":" + key
}
