package entitlement

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/gatekit/pkg/tier"
)

// Feature is a gated boolean capability as the UI names it.
type Feature string

const (
	FeatureAnalytics          Feature = "analytics"
	FeatureBranding           Feature = "branding"
	FeatureAutomatedMarketing Feature = "automated_marketing"
	FeatureOnlinePayments     Feature = "online_payments"
	FeaturePrioritySupport    Feature = "priority_support"
	FeatureMultiLocation      Feature = "multi_location"
	FeatureCRM                Feature = "crm"
	FeaturePromotions         Feature = "promotions"
	FeatureLoyalty            Feature = "loyalty"
	FeatureCampaigns          Feature = "campaigns"
)

type featureInfo struct {
	capability tier.Capability
	label      string // empty means derive from the name
	// businessOnly features also require the tier itself to be Business or above,
	// so a per-account override alone cannot unlock them.
	businessOnly bool
}

var featureTable = map[Feature]featureInfo{
	FeatureAnalytics:          {capability: tier.CapabilityAdvancedAnalytics, label: "Advanced analytics"},
	FeatureBranding:           {capability: tier.CapabilityCustomBranding, label: "Custom branding"},
	FeatureAutomatedMarketing: {capability: tier.CapabilityAutomatedMarketing},
	FeatureOnlinePayments:     {capability: tier.CapabilityOnlinePayments},
	FeaturePrioritySupport:    {capability: tier.CapabilityPrioritySupport, businessOnly: true},
	FeatureMultiLocation:      {capability: tier.CapabilityMultiLocation, label: "Multi-location management", businessOnly: true},
	FeatureCRM:                {capability: tier.CapabilityCRM, label: "CRM", businessOnly: true},
	FeaturePromotions:         {capability: tier.CapabilityPromotions},
	FeatureLoyalty:            {capability: tier.CapabilityLoyaltyProgram, label: "Loyalty program"},
	FeatureCampaigns:          {capability: tier.CapabilityMarketingCampaigns, label: "Marketing campaigns"},
}

// Features returns every known feature in a stable order.
func Features() []Feature {
	return []Feature{
		FeatureAnalytics,
		FeatureBranding,
		FeatureAutomatedMarketing,
		FeatureOnlinePayments,
		FeaturePrioritySupport,
		FeatureMultiLocation,
		FeatureCRM,
		FeaturePromotions,
		FeatureLoyalty,
		FeatureCampaigns,
	}
}

// ParseFeature accepts a feature name, its capability name or its label,
// in any case and with spaces or dashes in place of underscores.
func ParseFeature(s string) (Feature, error) {
	norm := normalize(s)
	if norm == "" {
		return "", ErrUnknownFeature
	}
	for f, info := range featureTable {
		if norm == string(f) || norm == string(info.capability) || norm == normalize(f.Label()) {
			return f, nil
		}
	}
	return "", ErrUnknownFeature
}

// Capability returns the tier capability behind f.
func (f Feature) Capability() tier.Capability {
	return featureTable[f].capability
}

// BusinessOnly reports whether f additionally requires the Business tier.
func (f Feature) BusinessOnly() bool {
	return featureTable[f].businessOnly
}

// Label is the human readable name used in messages.
func (f Feature) Label() string {
	if info, ok := featureTable[f]; ok && info.label != "" {
		return info.label
	}
	words := strings.ReplaceAll(string(f), "_", " ")
	// a Caser keeps state, so it cannot be shared across goroutines
	return cases.Title(language.English).String(words)
}

func (f Feature) known() bool {
	_, ok := featureTable[f]
	return ok
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// quotaNouns are the plural nouns used in quota messages.
var quotaNouns = map[tier.QuotaField]string{
	tier.QuotaMaxServices:         "services",
	tier.QuotaMaxPhotosPerService: "photos",
	tier.QuotaMaxTeamMembers:      "team members",
}

// QuotaNoun returns the plural noun for f, e.g. "services".
func QuotaNoun(f tier.QuotaField) string {
	if n, ok := quotaNouns[f]; ok {
		return n
	}
	return strings.ReplaceAll(strings.TrimPrefix(string(f), "max_"), "_", " ")
}
