package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/gatekit/pkg/cache"
)

func TestEntry_IsFresh(t *testing.T) {
	t.Parallel()

	fetched := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e := cache.NewEntry("pro", fetched, 5*time.Minute)

	assert.True(t, e.IsFresh(fetched))
	assert.True(t, e.IsFresh(fetched.Add(5*time.Minute-time.Nanosecond)))
	assert.False(t, e.IsFresh(fetched.Add(5*time.Minute)))
	assert.False(t, e.IsFresh(fetched.Add(time.Hour)))
	assert.Equal(t, 2*time.Minute, e.Age(fetched.Add(2*time.Minute)))

	zero := cache.NewEntry(1, fetched, 0)
	assert.False(t, zero.IsFresh(fetched))
}
