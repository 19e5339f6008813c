// Package subscription holds the signed-in user's subscription for the lifetime
// of a session.
//
// A Provider returns a raw Snapshot; Resolve turns it into a UserSubscription by
// starting from the tier defaults in package tier and overlaying whatever limits
// the backend sent. The Store caches the result with a TTL and collapses
// concurrent fetches into one.
//
// # Failure handling
//
// Nothing in this package returns an error to gating code. If the provider fails,
// Store serves the last good value regardless of age, or Fallback (active Free)
// when it never had one. Each of these paths is reported through a
// telemetry.Recorder so operators can see them.
//
// # Usage
//
//	store := subscription.NewStore(client,
//		subscription.WithTTL(5*time.Minute),
//		subscription.WithTelemetry(rec),
//	)
//	defer store.Close()
//
//	sub := store.Get(ctx)
//	if sub.Limits.Enabled(tier.CapabilityCRM) {
//		// show the CRM tab
//	}
//
// After an upgrade call Refresh; every Get issued after it returns sees the
// new subscription.
package subscription
