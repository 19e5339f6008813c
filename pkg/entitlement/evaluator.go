package entitlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/subscription"
	"github.com/dmitrymomot/gatekit/pkg/telemetry"
	"github.com/dmitrymomot/gatekit/pkg/tier"
	"github.com/dmitrymomot/gatekit/pkg/usage"
)

// SubscriptionSource returns the current subscription. *subscription.Store implements it.
type SubscriptionSource interface {
	Get(ctx context.Context) subscription.UserSubscription
}

// UsageSource returns the live count of a resource. *usage.Counter implements it.
type UsageSource interface {
	Get(ctx context.Context, key string) int64
}

// Result is the outcome of one check. It is built per call and never stored.
type Result struct {
	Allowed      bool   `json:"allowed"`
	CurrentCount *int64 `json:"current_count,omitempty"`
	Limit        *int64 `json:"limit,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Evaluator answers "may the user do X" questions.
//
// It never returns errors. Infrastructure trouble is absorbed by the store and
// counter fail-open rules; a denial is always Allowed=false with a Message.
type Evaluator struct {
	subs  SubscriptionSource
	usage UsageSource
	rec   telemetry.Recorder
}

// New creates an Evaluator. Panics if either source is nil.
func New(subs SubscriptionSource, counts UsageSource, opts ...Option) *Evaluator {
	if subs == nil {
		panic("entitlement: SubscriptionSource is required")
	}
	if counts == nil {
		panic("entitlement: UsageSource is required")
	}

	e := &Evaluator{subs: subs, usage: counts}
	for _, opt := range opts {
		opt(e)
	}
	e.rec = telemetry.OrNop(e.rec)
	return e
}

// Check evaluates a boolean feature. The name is matched like ParseFeature, so
// "CRM", "crm" and "Multi-location management" all work.
func (e *Evaluator) Check(ctx context.Context, f Feature) Result {
	return e.checkFeature(ctx, e.subs.Get(ctx), f)
}

// CheckQuota evaluates a countable limit. key is the usage counter key and noun
// the plural used in the denial message; an empty noun uses QuotaNoun(field).
// Unlimited quotas are allowed without reading the counter.
func (e *Evaluator) CheckQuota(ctx context.Context, field tier.QuotaField, key, noun string) Result {
	if !knownQuota(field) {
		e.rec.Record(ctx, telemetry.EntitlementUnknown, logger.Feature(string(field)))
		return Result{Message: fmt.Sprintf("%q is not a known limit.", string(field))}
	}
	return e.checkQuota(ctx, e.subs.Get(ctx), field, key, noun)
}

// checkFeature gates on the subscription's tier and limits as given. The
// active flag is informational and does not change the outcome.
func (e *Evaluator) checkFeature(ctx context.Context, sub subscription.UserSubscription, f Feature) Result {
	feature := f
	if !feature.known() {
		parsed, err := ParseFeature(string(f))
		if err != nil {
			e.rec.Record(ctx, telemetry.EntitlementUnknown, logger.Feature(string(f)))
			return Result{Message: fmt.Sprintf("%q is not a known feature.", string(f))}
		}
		feature = parsed
	}

	allowed := sub.Limits.Enabled(feature.Capability())
	if feature.BusinessOnly() && !sub.Tier.AtLeast(tier.Business) {
		allowed = false
	}
	if allowed {
		return Result{Allowed: true}
	}

	e.denied(ctx, string(feature), sub.Tier)
	return Result{Message: featureDenied(feature, sub.Tier)}
}

// checkQuota expects a known field.
func (e *Evaluator) checkQuota(ctx context.Context, sub subscription.UserSubscription, field tier.QuotaField, key, noun string) Result {
	if noun == "" {
		noun = QuotaNoun(field)
	}

	limit, bounded := sub.Limits.Quota(field).Max()
	if !bounded {
		return Result{Allowed: true}
	}

	count := e.usage.Get(ctx, key)
	res := Result{
		Allowed:      count < limit,
		CurrentCount: &count,
		Limit:        &limit,
	}
	if !res.Allowed {
		res.Message = quotaDenied(field, noun, limit, sub.Tier)
		e.denied(ctx, string(field), sub.Tier, logger.Resource(key))
	}
	return res
}

// CanAddService checks the services quota.
func (e *Evaluator) CanAddService(ctx context.Context) Result {
	return e.CheckQuota(ctx, tier.QuotaMaxServices, usage.ServicesKey(), "")
}

// CanAddPhoto checks the photo quota of one service.
func (e *Evaluator) CanAddPhoto(ctx context.Context, serviceID string) Result {
	return e.CheckQuota(ctx, tier.QuotaMaxPhotosPerService, usage.PhotosKey(serviceID), "")
}

// CanAddTeamMember checks the team size quota.
func (e *Evaluator) CanAddTeamMember(ctx context.Context) Result {
	return e.CheckQuota(ctx, tier.QuotaMaxTeamMembers, usage.TeamMembersKey(), "")
}

func (e *Evaluator) denied(ctx context.Context, name string, current tier.Tier, extra ...slog.Attr) {
	attrs := append([]slog.Attr{logger.Feature(name), logger.Tier(current)}, extra...)
	e.rec.Record(ctx, telemetry.EntitlementDenied, attrs...)
}

func knownQuota(f tier.QuotaField) bool {
	for _, q := range tier.QuotaFields() {
		if q == f {
			return true
		}
	}
	return false
}
