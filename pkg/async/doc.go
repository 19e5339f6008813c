// Package async provides a minimal generic Future.
//
// The entitlement engine stores the *Future of an outstanding fetch as its
// single-flight guard: callers arriving while the fetch is pending wait on the
// same Future instead of starting a second request.
//
//	f := async.Async(ctx, struct{}{}, func(ctx context.Context, _ struct{}) (int, error) {
//		return provider.Fetch(ctx)
//	})
//	v, err := f.AwaitContext(callerCtx)
//
// Await blocks unconditionally; AwaitContext gives up when the caller's context ends
// while the computation keeps running for other waiters.
package async
