package tier

import "fmt"

// Capability names a boolean plan capability.
type Capability string

const (
	CapabilityAdvancedAnalytics  Capability = "advanced_analytics"
	CapabilityCustomBranding     Capability = "custom_branding"
	CapabilityAutomatedMarketing Capability = "automated_marketing"
	CapabilityOnlinePayments     Capability = "online_payments"
	CapabilityPrioritySupport    Capability = "priority_support"
	CapabilityMultiLocation      Capability = "multi_location"
	CapabilityCRM                Capability = "crm"
	CapabilityPromotions         Capability = "promotions"
	CapabilityLoyaltyProgram     Capability = "loyalty_program"
	CapabilityMarketingCampaigns Capability = "marketing_campaigns"
)

// Capabilities returns every boolean capability in a stable order.
func Capabilities() []Capability {
	return []Capability{
		CapabilityAdvancedAnalytics,
		CapabilityCustomBranding,
		CapabilityAutomatedMarketing,
		CapabilityOnlinePayments,
		CapabilityPrioritySupport,
		CapabilityMultiLocation,
		CapabilityCRM,
		CapabilityPromotions,
		CapabilityLoyaltyProgram,
		CapabilityMarketingCampaigns,
	}
}

// QuotaField names a countable plan limit.
type QuotaField string

const (
	QuotaMaxServices         QuotaField = "max_services"
	QuotaMaxPhotosPerService QuotaField = "max_photos_per_service"
	QuotaMaxTeamMembers      QuotaField = "max_team_members"
)

// QuotaFields returns every quota field in a stable order.
func QuotaFields() []QuotaField {
	return []QuotaField{QuotaMaxServices, QuotaMaxPhotosPerService, QuotaMaxTeamMembers}
}

// ParseQuotaField accepts the snake_case name and the camelCase form used by mobile clients.
func ParseQuotaField(s string) (QuotaField, error) {
	switch s {
	case string(QuotaMaxServices), "maxServices":
		return QuotaMaxServices, nil
	case string(QuotaMaxPhotosPerService), "maxPhotosPerService":
		return QuotaMaxPhotosPerService, nil
	case string(QuotaMaxTeamMembers), "maxTeamMembers":
		return QuotaMaxTeamMembers, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQuotaField, s)
}

// Limits is the full capability/quota table of a subscription.
// It is a plain value: copy it, never share pointers into it.
type Limits struct {
	MaxServices         Quota `json:"max_services"`
	MaxPhotosPerService Quota `json:"max_photos_per_service"`
	MaxTeamMembers      Quota `json:"max_team_members"`

	AdvancedAnalytics  bool `json:"advanced_analytics"`
	CustomBranding     bool `json:"custom_branding"`
	AutomatedMarketing bool `json:"automated_marketing"`
	OnlinePayments     bool `json:"online_payments"`
	PrioritySupport    bool `json:"priority_support"`
	MultiLocation      bool `json:"multi_location"`
	CRM                bool `json:"crm"`
	Promotions         bool `json:"promotions"`
	LoyaltyProgram     bool `json:"loyalty_program"`
	MarketingCampaigns bool `json:"marketing_campaigns"`
}

// Enabled reports whether capability c is switched on. Unknown capabilities are off.
func (l Limits) Enabled(c Capability) bool {
	switch c {
	case CapabilityAdvancedAnalytics:
		return l.AdvancedAnalytics
	case CapabilityCustomBranding:
		return l.CustomBranding
	case CapabilityAutomatedMarketing:
		return l.AutomatedMarketing
	case CapabilityOnlinePayments:
		return l.OnlinePayments
	case CapabilityPrioritySupport:
		return l.PrioritySupport
	case CapabilityMultiLocation:
		return l.MultiLocation
	case CapabilityCRM:
		return l.CRM
	case CapabilityPromotions:
		return l.Promotions
	case CapabilityLoyaltyProgram:
		return l.LoyaltyProgram
	case CapabilityMarketingCampaigns:
		return l.MarketingCampaigns
	default:
		return false
	}
}

// Quota returns the quota stored under f. Unknown fields resolve to Bounded(0).
func (l Limits) Quota(f QuotaField) Quota {
	switch f {
	case QuotaMaxServices:
		return l.MaxServices
	case QuotaMaxPhotosPerService:
		return l.MaxPhotosPerService
	case QuotaMaxTeamMembers:
		return l.MaxTeamMembers
	default:
		return Quota{}
	}
}
