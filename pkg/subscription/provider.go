package subscription

import "context"

// Provider fetches the current user's subscription from the billing backend.
type Provider interface {
	FetchCurrentSubscription(ctx context.Context) (*Snapshot, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (*Snapshot, error)

func (f ProviderFunc) FetchCurrentSubscription(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}
