// Package gateway exposes a session's entitlements over HTTP for frontends
// that cannot embed the Go packages directly.
//
// Every response is a JSON envelope, {"data": ...} on success and
// {"error": {"code": ..., "message": ...}} on failure. Entitlement denials
// are successful responses whose data has "allowed": false; only malformed
// requests and missing sessions produce errors.
//
//	r := gateway.Router(gateway.Options{
//		Sessions: gateway.FixedSession(s),
//		Metrics:  promhttp.Handler(),
//	})
//	err := gateway.Serve(ctx, gateway.DefaultServerConfig(":8080"), r, log)
package gateway
