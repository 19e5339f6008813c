// Package tier defines subscription tiers and the default capability table of each tier.
//
// Tiers are totally ordered (Free < Pro < Business) and gating code compares them with
// Tier.AtLeast. Quotas are modelled as a tagged value (Unlimited or Bounded(n)); the
// billing API's "-1 means unlimited" convention is translated only at the JSON boundary
// through QuotaFromSentinel and Quota.Sentinel.
//
// # Usage
//
//	limits := tier.LimitsFor(tier.Pro)
//	if limits.Enabled(tier.CapabilityPromotions) {
//		// show promotions editor
//	}
//	if !limits.MaxServices.Allows(current) {
//		// show upgrade prompt
//	}
//
// The table is monotonic: a capability enabled on a tier stays enabled on every higher
// tier, and quotas never shrink as the tier grows.
package tier
