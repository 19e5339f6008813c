package subscription

import (
	"time"

	"github.com/dmitrymomot/gatekit/pkg/tier"
)

// Fallback is served when the provider has never answered successfully:
// an active Free subscription with the Free defaults.
func Fallback(now time.Time) UserSubscription {
	return UserSubscription{
		Tier:      tier.Free,
		Limits:    tier.LimitsFor(tier.Free),
		IsActive:  true,
		Source:    SourceFallback,
		FetchedAt: now,
	}
}

// Resolve turns a provider snapshot into a UserSubscription. Limits start from
// tier.LimitsFor and each field present in snap.Limits replaces its default.
// The returned error is ErrUnknownTier when the tier could not be parsed; the
// subscription is still usable and resolved as Free.
func Resolve(snap Snapshot, now time.Time) (UserSubscription, error) {
	t, err := tier.Parse(snap.Tier)
	if err != nil {
		t = tier.Free
		err = ErrUnknownTier
	}

	return UserSubscription{
		Tier:        t,
		Limits:      snap.Limits.Apply(tier.LimitsFor(t)),
		IsActive:    snap.IsActive,
		ExpiresAt:   cloneTime(snap.EndDate),
		RenewalDate: cloneTime(snap.RenewalDate),
		Source:      SourceProvider,
		FetchedAt:   now,
	}, err
}

// Apply overlays the set fields of p on base. A nil receiver returns base unchanged.
func (p *PartialLimits) Apply(base tier.Limits) tier.Limits {
	if p == nil {
		return base
	}

	overrideQuota(&base.MaxServices, p.MaxServices)
	overrideQuota(&base.MaxPhotosPerService, p.MaxPhotosPerService)
	overrideQuota(&base.MaxTeamMembers, p.MaxTeamMembers)

	overrideBool(&base.AdvancedAnalytics, p.AdvancedAnalytics)
	overrideBool(&base.CustomBranding, p.CustomBranding)
	overrideBool(&base.AutomatedMarketing, p.AutomatedMarketing)
	overrideBool(&base.OnlinePayments, p.OnlinePayments)
	overrideBool(&base.PrioritySupport, p.PrioritySupport)
	overrideBool(&base.MultiLocation, p.MultiLocation)
	overrideBool(&base.CRM, p.CRM)
	overrideBool(&base.Promotions, p.Promotions)
	overrideBool(&base.LoyaltyProgram, p.LoyaltyProgram)
	overrideBool(&base.MarketingCampaigns, p.MarketingCampaigns)

	return base
}

// Empty reports whether p overrides nothing.
func (p *PartialLimits) Empty() bool {
	return p == nil || *p == PartialLimits{}
}

func overrideQuota(dst *tier.Quota, src *tier.Quota) {
	if src != nil {
		*dst = *src
	}
}

func overrideBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
