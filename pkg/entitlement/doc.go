// Package entitlement decides whether the signed-in user may use a feature or
// add one more of a counted resource.
//
// Checks read the subscription through a SubscriptionSource and live counts
// through a UsageSource; both are fail-open, so a check only denies on a genuine
// tier or quota mismatch. Denials carry a message naming the current plan and
// the plan to upgrade to:
//
//	res := ev.Check(ctx, entitlement.FeatureCRM)
//	if !res.Allowed {
//		showUpgrade(res.Message)
//	}
//
//	res = ev.CanAddPhoto(ctx, serviceID)
//
// An inactive subscription is evaluated against the Free limits. CRM,
// multi-location and priority support additionally require the Business tier.
package entitlement
