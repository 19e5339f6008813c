package cache

import "time"

// Entry is a cached value together with the moment it was fetched and how long it stays fresh.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
	TTL       time.Duration
}

// NewEntry stamps value with now.
func NewEntry[T any](value T, now time.Time, ttl time.Duration) Entry[T] {
	return Entry[T]{Value: value, FetchedAt: now, TTL: ttl}
}

// IsFresh reports whether now - FetchedAt < TTL.
// A zero TTL means the entry is never fresh.
func (e Entry[T]) IsFresh(now time.Time) bool {
	return now.Sub(e.FetchedAt) < e.TTL
}

// Age returns how long ago the value was fetched.
func (e Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}
