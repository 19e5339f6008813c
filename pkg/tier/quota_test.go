package tier_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/pkg/tier"
)

func TestQuota_Allows(t *testing.T) {
	t.Parallel()

	t.Run("bounded", func(t *testing.T) {
		t.Parallel()
		q := tier.Bounded(3)
		assert.True(t, q.Allows(0))
		assert.True(t, q.Allows(2))
		assert.False(t, q.Allows(3))
		assert.False(t, q.Allows(10))

		bound, ok := q.Max()
		assert.True(t, ok)
		assert.Equal(t, int64(3), bound)
	})

	t.Run("zero value allows nothing", func(t *testing.T) {
		t.Parallel()
		var q tier.Quota
		assert.False(t, q.IsUnlimited())
		assert.False(t, q.Allows(0))
	})

	t.Run("unlimited", func(t *testing.T) {
		t.Parallel()
		q := tier.Unlimited()
		assert.True(t, q.IsUnlimited())
		assert.True(t, q.Allows(math.MaxInt64))

		_, ok := q.Max()
		assert.False(t, ok)
	})

	t.Run("negative bound panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { tier.Bounded(-1) })
	})
}

func TestQuota_Sentinel(t *testing.T) {
	t.Parallel()

	assert.True(t, tier.QuotaFromSentinel(-1).IsUnlimited())
	assert.True(t, tier.QuotaFromSentinel(-42).IsUnlimited())
	assert.Equal(t, tier.Bounded(0), tier.QuotaFromSentinel(0))
	assert.Equal(t, tier.Bounded(7), tier.QuotaFromSentinel(7))

	assert.Equal(t, int64(-1), tier.Unlimited().Sentinel())
	assert.Equal(t, int64(5), tier.Bounded(5).Sentinel())
}

func TestQuota_Covers(t *testing.T) {
	t.Parallel()

	assert.True(t, tier.Unlimited().Covers(tier.Unlimited()))
	assert.True(t, tier.Unlimited().Covers(tier.Bounded(100)))
	assert.False(t, tier.Bounded(100).Covers(tier.Unlimited()))
	assert.True(t, tier.Bounded(5).Covers(tier.Bounded(5)))
	assert.False(t, tier.Bounded(4).Covers(tier.Bounded(5)))
}

func TestQuota_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(tier.LimitsFor(tier.Business))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"max_services":-1`)

	var l tier.Limits
	require.NoError(t, json.Unmarshal([]byte(`{"max_services":12,"max_team_members":-1}`), &l))
	assert.Equal(t, tier.Bounded(12), l.MaxServices)
	assert.True(t, l.MaxTeamMembers.IsUnlimited())
}
