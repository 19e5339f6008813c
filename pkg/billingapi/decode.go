package billingapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrymomot/gatekit/pkg/subscription"
	"github.com/dmitrymomot/gatekit/pkg/tier"
)

// decodeSnapshot parses the subscription payload leniently. Only a body that is
// not a JSON object fails; a bad field is dropped so the tier default applies.
// Keys are accepted in snake_case and camelCase.
func decodeSnapshot(body []byte) (*subscription.Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("subscription payload is null")
	}

	// a payload without a usable is_active counts as active, like the fallback
	snap := &subscription.Snapshot{
		Tier:        decodeTier(pick(fields, "tier")),
		IsActive:    true,
		EndDate:     decodeTime(pick(fields, "end_date", "endDate")),
		RenewalDate: decodeTime(pick(fields, "renewal_date", "renewalDate")),
	}

	if active := decodeBool(pick(fields, "is_active", "isActive")); active != nil {
		snap.IsActive = *active
	}

	var limits map[string]json.RawMessage
	if raw := pick(fields, "limits"); raw != nil && json.Unmarshal(raw, &limits) == nil && limits != nil {
		snap.Limits = decodeLimits(limits)
	}

	return snap, nil
}

func decodeLimits(f map[string]json.RawMessage) *subscription.PartialLimits {
	p := &subscription.PartialLimits{
		MaxServices:         decodeQuota(pick(f, "max_services", "maxServices")),
		MaxPhotosPerService: decodeQuota(pick(f, "max_photos_per_service", "maxPhotosPerService")),
		MaxTeamMembers:      decodeQuota(pick(f, "max_team_members", "maxTeamMembers")),

		AdvancedAnalytics:  decodeBool(pick(f, "advanced_analytics", "advancedAnalytics")),
		CustomBranding:     decodeBool(pick(f, "custom_branding", "customBranding")),
		AutomatedMarketing: decodeBool(pick(f, "automated_marketing", "automatedMarketing")),
		OnlinePayments:     decodeBool(pick(f, "online_payments", "onlinePayments")),
		PrioritySupport:    decodeBool(pick(f, "priority_support", "prioritySupport")),
		MultiLocation:      decodeBool(pick(f, "multi_location", "multiLocation")),
		CRM:                decodeBool(pick(f, "crm", "crmRevenue")),
		Promotions:         decodeBool(pick(f, "promotions")),
		LoyaltyProgram:     decodeBool(pick(f, "loyalty_program", "loyaltyProgram")),
		MarketingCampaigns: decodeBool(pick(f, "marketing_campaigns", "marketingCampaigns")),
	}
	if p.Empty() {
		return nil
	}
	return p
}

func pick(fields map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := fields[k]; ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return v
		}
	}
	return nil
}

// decodeTier returns the tier as a string; ordinals are kept as digits so
// tier.Parse can handle both forms.
func decodeTier(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n int64
	if json.Unmarshal(raw, &n) == nil {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

func decodeBool(raw json.RawMessage) *bool {
	if raw == nil {
		return nil
	}
	var b bool
	if json.Unmarshal(raw, &b) != nil {
		return nil
	}
	return &b
}

func decodeQuota(raw json.RawMessage) *tier.Quota {
	if raw == nil {
		return nil
	}
	var q tier.Quota
	if q.UnmarshalJSON(raw) != nil {
		return nil
	}
	return &q
}

func decodeTime(raw json.RawMessage) *time.Time {
	if raw == nil {
		return nil
	}
	var t time.Time
	if json.Unmarshal(raw, &t) != nil {
		return nil
	}
	return &t
}
