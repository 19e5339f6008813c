package tier

// policy is the default capability table per tier. Every field is spelled
// out for every tier; a disabled capability is an explicit false.
var policy = map[Tier]Limits{
	Free: {
		MaxServices:         Bounded(3),
		MaxPhotosPerService: Bounded(3),
		MaxTeamMembers:      Bounded(1),
		AdvancedAnalytics:   false,
		CustomBranding:      false,
		AutomatedMarketing:  false,
		OnlinePayments:      false,
		PrioritySupport:     false,
		MultiLocation:       false,
		CRM:                 false,
		Promotions:          false,
		LoyaltyProgram:      false,
		MarketingCampaigns:  false,
	},
	Pro: {
		MaxServices:         Bounded(20),
		MaxPhotosPerService: Bounded(10),
		MaxTeamMembers:      Bounded(5),
		AdvancedAnalytics:   true,
		CustomBranding:      true,
		AutomatedMarketing:  true,
		OnlinePayments:      true,
		PrioritySupport:     false,
		MultiLocation:       false,
		CRM:                 false,
		Promotions:          true,
		LoyaltyProgram:      true,
		MarketingCampaigns:  true,
	},
	Business: {
		MaxServices:         Unlimited(),
		MaxPhotosPerService: Unlimited(),
		MaxTeamMembers:      Unlimited(),
		AdvancedAnalytics:   true,
		CustomBranding:      true,
		AutomatedMarketing:  true,
		OnlinePayments:      true,
		PrioritySupport:     true,
		MultiLocation:       true,
		CRM:                 true,
		Promotions:          true,
		LoyaltyProgram:      true,
		MarketingCampaigns:  true,
	},
}

// LimitsFor returns the default limits of t. Unknown tiers get the Free table.
func LimitsFor(t Tier) Limits {
	if l, ok := policy[t]; ok {
		return l
	}
	return policy[Free]
}

// QualifyingTiers returns, in ascending order, every tier whose default
// limits enable c.
func QualifyingTiers(c Capability) []Tier {
	var tiers []Tier
	for _, t := range All() {
		if LimitsFor(t).Enabled(c) {
			tiers = append(tiers, t)
		}
	}
	return tiers
}

// MinimumTier returns the lowest tier enabling c.
// The boolean is false when no tier enables it.
func MinimumTier(c Capability) (Tier, bool) {
	tiers := QualifyingTiers(c)
	if len(tiers) == 0 {
		return Free, false
	}
	return tiers[0], true
}

// NextQuotaTier returns the lowest tier above current whose default quota
// for f is strictly more generous than current's.
func NextQuotaTier(current Tier, f QuotaField) (Tier, bool) {
	base := LimitsFor(current).Quota(f)
	for _, t := range All() {
		if t <= current {
			continue
		}
		q := LimitsFor(t).Quota(f)
		if q.Covers(base) && !base.Covers(q) {
			return t, true
		}
	}
	return current, false
}
