package entitlement_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/pkg/entitlement"
	"github.com/dmitrymomot/gatekit/pkg/subscription"
	"github.com/dmitrymomot/gatekit/pkg/telemetry"
	"github.com/dmitrymomot/gatekit/pkg/tier"
	"github.com/dmitrymomot/gatekit/pkg/usage"
)

type fixedSubscription subscription.UserSubscription

func (f fixedSubscription) Get(context.Context) subscription.UserSubscription {
	return subscription.UserSubscription(f)
}

func onTier(t tier.Tier) fixedSubscription {
	return fixedSubscription{Tier: t, Limits: tier.LimitsFor(t), IsActive: true}
}

type fakeUsage struct {
	mu     sync.Mutex
	counts map[string]int64
	calls  int
}

func (f *fakeUsage) Get(_ context.Context, key string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.counts[key]
}

func (f *fakeUsage) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func counts(kv map[string]int64) *fakeUsage {
	return &fakeUsage{counts: kv}
}

func TestCheckQuota_FreeAtLimit(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Memory{}
	ev := entitlement.New(onTier(tier.Free), counts(map[string]int64{"services": 3}), entitlement.WithTelemetry(rec))

	res := ev.CheckQuota(context.Background(), tier.QuotaMaxServices, usage.ServicesKey(), "services")

	assert.False(t, res.Allowed)
	require.NotNil(t, res.CurrentCount)
	require.NotNil(t, res.Limit)
	assert.Equal(t, int64(3), *res.CurrentCount)
	assert.Equal(t, int64(3), *res.Limit)
	assert.Equal(t, "You've reached the limit of 3 services on the Free plan. Upgrade to Pro for more.", res.Message)
	assert.Equal(t, 1, rec.Count(telemetry.EntitlementDenied))
}

func TestCheckQuota_BelowLimit(t *testing.T) {
	t.Parallel()

	ev := entitlement.New(onTier(tier.Pro), counts(map[string]int64{"services": 19}))

	res := ev.CanAddService(context.Background())
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(19), *res.CurrentCount)
	assert.Equal(t, int64(20), *res.Limit)
	assert.Empty(t, res.Message)
}

func TestCheckQuota_UnlimitedSkipsUsage(t *testing.T) {
	t.Parallel()

	u := counts(map[string]int64{"services": 10_000, "photos:s1": 5_000, "team_members": 300})
	ev := entitlement.New(onTier(tier.Business), u)

	for _, res := range []entitlement.Result{
		ev.CanAddService(context.Background()),
		ev.CanAddPhoto(context.Background(), "s1"),
		ev.CanAddTeamMember(context.Background()),
	} {
		assert.Equal(t, entitlement.Result{Allowed: true}, res)
	}
	assert.Zero(t, u.Calls())
}

func TestCheckQuota_PhotosArePerService(t *testing.T) {
	t.Parallel()

	ev := entitlement.New(onTier(tier.Pro), counts(map[string]int64{"photos:a": 10, "photos:b": 2}))

	full := ev.CanAddPhoto(context.Background(), "a")
	assert.False(t, full.Allowed)
	assert.Equal(t, "You've reached the limit of 10 photos on the Pro plan. Upgrade to Business for more.", full.Message)

	assert.True(t, ev.CanAddPhoto(context.Background(), "b").Allowed)
}

func TestCheckQuota_NoHigherTier(t *testing.T) {
	t.Parallel()

	services := tier.Bounded(100)
	sub := onTier(tier.Business)
	sub.Limits.MaxServices = services

	ev := entitlement.New(sub, counts(map[string]int64{"services": 100}))

	res := ev.CanAddService(context.Background())
	assert.False(t, res.Allowed)
	assert.Equal(t, "You've reached the limit of 100 services on the Business plan. Contact support to raise it.", res.Message)
}

func TestCheckQuota_UnknownField(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Memory{}
	u := counts(nil)
	ev := entitlement.New(onTier(tier.Business), u, entitlement.WithTelemetry(rec))

	res := ev.CheckQuota(context.Background(), tier.QuotaField("max_locations"), "locations", "")
	assert.False(t, res.Allowed)
	assert.NotEmpty(t, res.Message)
	assert.Zero(t, u.Calls())
	assert.Equal(t, 1, rec.Count(telemetry.EntitlementUnknown))
}

func TestCheck_BusinessOnlyFeatures(t *testing.T) {
	t.Parallel()

	pro := entitlement.New(onTier(tier.Pro), counts(nil))
	res := pro.Check(context.Background(), "CRM")
	assert.False(t, res.Allowed)
	assert.Equal(t, "CRM is available with the Business plan. You're currently on the Pro plan.", res.Message)

	business := entitlement.New(onTier(tier.Business), counts(nil))
	assert.True(t, business.Check(context.Background(), "CRM").Allowed)
	assert.True(t, business.Check(context.Background(), entitlement.FeatureMultiLocation).Allowed)
}

func TestCheck_OverrideCannotUnlockBusinessOnly(t *testing.T) {
	t.Parallel()

	sub := onTier(tier.Pro)
	sub.Limits.CRM = true
	sub.Limits.MultiLocation = true

	ev := entitlement.New(sub, counts(nil))
	assert.False(t, ev.Check(context.Background(), entitlement.FeatureCRM).Allowed)
	assert.False(t, ev.Check(context.Background(), entitlement.FeatureMultiLocation).Allowed)
}

func TestCheck_OverrideCanSwitchOff(t *testing.T) {
	t.Parallel()

	sub := onTier(tier.Business)
	sub.Limits.AdvancedAnalytics = false

	ev := entitlement.New(sub, counts(nil))
	res := ev.Check(context.Background(), entitlement.FeatureAnalytics)
	assert.False(t, res.Allowed)
	assert.Equal(t, "Advanced analytics is not included in your Business plan. Contact support to enable it.", res.Message)
}

func TestCheck_FreeUpgradeMessage(t *testing.T) {
	t.Parallel()

	ev := entitlement.New(onTier(tier.Free), counts(nil))
	res := ev.Check(context.Background(), entitlement.FeatureOnlinePayments)
	assert.False(t, res.Allowed)
	assert.Equal(t, "Online Payments is available with Pro and Business plans. You're currently on the Free plan.", res.Message)
}

func TestCheck_InactiveFlagDoesNotNarrowLimits(t *testing.T) {
	t.Parallel()

	sub := onTier(tier.Business)
	sub.IsActive = false

	ev := entitlement.New(sub, counts(map[string]int64{"services": 10_000}))

	assert.True(t, ev.Check(context.Background(), entitlement.FeatureCRM).Allowed)
	assert.True(t, ev.CanAddService(context.Background()).Allowed)

	s := ev.Summary(context.Background())
	assert.Equal(t, tier.Business, s.Tier)
	assert.False(t, s.IsActive)
	assert.True(t, s.Features[entitlement.FeatureCRM].Allowed)
}

func TestCheck_UnknownFeature(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Memory{}
	ev := entitlement.New(onTier(tier.Business), counts(nil), entitlement.WithTelemetry(rec))

	res := ev.Check(context.Background(), "teleportation")
	assert.False(t, res.Allowed)
	assert.Equal(t, `"teleportation" is not a known feature.`, res.Message)
	assert.Equal(t, 1, rec.Count(telemetry.EntitlementUnknown))
}

func TestSummary(t *testing.T) {
	t.Parallel()

	ev := entitlement.New(onTier(tier.Pro), counts(map[string]int64{"services": 4, "team_members": 5}))

	s := ev.Summary(context.Background())
	assert.Equal(t, tier.Pro, s.Tier)
	assert.True(t, s.IsActive)
	assert.Len(t, s.Features, len(entitlement.Features()))
	assert.True(t, s.Features[entitlement.FeatureAnalytics].Allowed)
	assert.False(t, s.Features[entitlement.FeatureCRM].Allowed)
	assert.True(t, s.Quotas[tier.QuotaMaxServices].Allowed)
	assert.False(t, s.Quotas[tier.QuotaMaxTeamMembers].Allowed)
}

// upgradingSubscription returns Free on the first read and Business after.
type upgradingSubscription struct {
	mu    sync.Mutex
	reads int
}

func (u *upgradingSubscription) Get(context.Context) subscription.UserSubscription {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.reads++
	if u.reads == 1 {
		return subscription.UserSubscription(onTier(tier.Free))
	}
	return subscription.UserSubscription(onTier(tier.Business))
}

func TestSummary_ReadsSubscriptionOnce(t *testing.T) {
	t.Parallel()

	subs := &upgradingSubscription{}
	ev := entitlement.New(subs, counts(map[string]int64{"services": 5}))

	s := ev.Summary(context.Background())
	assert.Equal(t, 1, subs.reads)
	assert.Equal(t, tier.Free, s.Tier)
	assert.False(t, s.Features[entitlement.FeatureCRM].Allowed)
	assert.False(t, s.Quotas[tier.QuotaMaxServices].Allowed)
	require.NotNil(t, s.Quotas[tier.QuotaMaxServices].Limit)
	assert.Equal(t, int64(3), *s.Quotas[tier.QuotaMaxServices].Limit)
}

func TestNew_RequiresSources(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { entitlement.New(nil, counts(nil)) })
	assert.Panics(t, func() { entitlement.New(onTier(tier.Free), nil) })
}
