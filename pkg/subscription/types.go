package subscription

import (
	"time"

	"github.com/dmitrymomot/gatekit/pkg/tier"
)

// Source tells where a UserSubscription came from.
type Source string

const (
	// SourceProvider values were parsed from a successful provider fetch.
	SourceProvider Source = "provider"
	// SourceFallback values were synthesised because no fetch ever succeeded.
	SourceFallback Source = "fallback"
)

// UserSubscription is the resolved subscription of the signed-in user.
// It is a value: the store replaces it wholesale and callers must not
// modify what the time pointers reference. Gating reads Tier and Limits;
// IsActive is reported to the UI but never narrows them.
type UserSubscription struct {
	Tier        tier.Tier   `json:"tier"`
	Limits      tier.Limits `json:"limits"`
	IsActive    bool        `json:"is_active"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
	RenewalDate *time.Time  `json:"renewal_date,omitempty"`
	Source      Source      `json:"source"`
	FetchedAt   time.Time   `json:"fetched_at"`
}

// IsExpired reports whether ExpiresAt is set and not after now.
func (s UserSubscription) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// Snapshot is what the subscription provider returns. Tier is kept raw so
// an unknown value degrades to the Free defaults instead of failing the fetch.
type Snapshot struct {
	Tier        string         `json:"tier"`
	IsActive    bool           `json:"is_active"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	RenewalDate *time.Time     `json:"renewal_date,omitempty"`
	Limits      *PartialLimits `json:"limits,omitempty"`
}

// PartialLimits carries per-account overrides. Nil fields keep the tier default.
type PartialLimits struct {
	MaxServices         *tier.Quota `json:"max_services,omitempty"`
	MaxPhotosPerService *tier.Quota `json:"max_photos_per_service,omitempty"`
	MaxTeamMembers      *tier.Quota `json:"max_team_members,omitempty"`

	AdvancedAnalytics  *bool `json:"advanced_analytics,omitempty"`
	CustomBranding     *bool `json:"custom_branding,omitempty"`
	AutomatedMarketing *bool `json:"automated_marketing,omitempty"`
	OnlinePayments     *bool `json:"online_payments,omitempty"`
	PrioritySupport    *bool `json:"priority_support,omitempty"`
	MultiLocation      *bool `json:"multi_location,omitempty"`
	CRM                *bool `json:"crm,omitempty"`
	Promotions         *bool `json:"promotions,omitempty"`
	LoyaltyProgram     *bool `json:"loyalty_program,omitempty"`
	MarketingCampaigns *bool `json:"marketing_campaigns,omitempty"`
}
