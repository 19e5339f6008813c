package entitlement

import (
	"context"

	"github.com/dmitrymomot/gatekit/pkg/tier"
	"github.com/dmitrymomot/gatekit/pkg/usage"
)

// Summary is every entitlement of the user at once, for dashboards.
type Summary struct {
	Tier     tier.Tier                  `json:"tier"`
	IsActive bool                       `json:"is_active"`
	Limits   tier.Limits                `json:"limits"`
	Features map[Feature]Result         `json:"features"`
	Quotas   map[tier.QuotaField]Result `json:"quotas"`
}

// Summary evaluates every feature and the account-wide quotas against one read
// of the subscription. The per-service photo quota needs a service ID and is
// only reported through Limits.
func (e *Evaluator) Summary(ctx context.Context) Summary {
	sub := e.subs.Get(ctx)

	s := Summary{
		Tier:     sub.Tier,
		IsActive: sub.IsActive,
		Limits:   sub.Limits,
		Features: make(map[Feature]Result, len(featureTable)),
		Quotas:   make(map[tier.QuotaField]Result, 2),
	}
	for _, f := range Features() {
		s.Features[f] = e.checkFeature(ctx, sub, f)
	}
	s.Quotas[tier.QuotaMaxServices] = e.checkQuota(ctx, sub, tier.QuotaMaxServices, usage.ServicesKey(), "")
	s.Quotas[tier.QuotaMaxTeamMembers] = e.checkQuota(ctx, sub, tier.QuotaMaxTeamMembers, usage.TeamMembersKey(), "")

	return s
}
