// Package activation reconciles the subscription after a completed checkout.
//
// The client call to the activation endpoint is a nudge, not the source of
// truth. Whatever it returns, Flow waits a grace period and refreshes the
// subscription store so the UI reflects what the backend actually recorded.
package activation
