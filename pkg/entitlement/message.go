package entitlement

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/gatekit/pkg/tier"
)

// featureDenied builds the upgrade hint for a boolean feature the user lacks.
func featureDenied(f Feature, current tier.Tier) string {
	var upgrades []tier.Tier
	for _, t := range tier.QualifyingTiers(f.Capability()) {
		if t > current {
			upgrades = append(upgrades, t)
		}
	}

	if len(upgrades) == 0 {
		return fmt.Sprintf("%s is not included in your %s plan. Contact support to enable it.",
			f.Label(), current.DisplayName())
	}

	return fmt.Sprintf("%s is available with %s. You're currently on the %s plan.",
		f.Label(), planList(upgrades), current.DisplayName())
}

// quotaDenied builds the message for a bounded quota that has been reached.
func quotaDenied(field tier.QuotaField, noun string, limit int64, current tier.Tier) string {
	msg := fmt.Sprintf("You've reached the limit of %d %s on the %s plan.", limit, noun, current.DisplayName())
	if next, ok := tier.NextQuotaTier(current, field); ok {
		return msg + fmt.Sprintf(" Upgrade to %s for more.", next.DisplayName())
	}
	return msg + " Contact support to raise it."
}

// planList renders "the Business plan" or "Pro and Business plans".
func planList(tiers []tier.Tier) string {
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = t.DisplayName()
	}

	switch len(names) {
	case 1:
		return "the " + names[0] + " plan"
	case 2:
		return names[0] + " and " + names[1] + " plans"
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1] + " plans"
	}
}
