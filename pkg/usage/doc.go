// Package usage caches live resource counts ("services owned", "photos of service S")
// used by quota checks.
//
// Each key has its own time-to-live (DefaultTTL, five minutes). A Get on a fresh key is
// answered from memory; a stale or missing key triggers one fetch, shared by every
// concurrent caller of that key. When the fetch fails the Counter serves the last known
// count even if stale, or zero when nothing was ever fetched, so a network error never
// turns a quota check into a blocking error.
//
//	counter := usage.NewCounter(apiClient, usage.WithTelemetry(rec))
//	services := counter.Get(ctx, usage.ServicesKey())
//	photos := counter.Get(ctx, usage.PhotosKey(serviceID))
//
// Call Invalidate after the user creates or deletes a resource and Reset when the session ends.
package usage
