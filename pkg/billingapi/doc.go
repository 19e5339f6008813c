// Package billingapi is the HTTP client for the subscription and usage API.
//
// Endpoints, relative to Config.BaseURL:
//
//	GET  subscription/current           → {tier, is_active, end_date, renewal_date, limits}
//	GET  usage/{resource}[?service_id=] → {count}
//	POST subscription/activate          ← {session_id}
//
// Client satisfies subscription.Provider, usage.Fetcher and activation.Activator,
// so a single instance backs a whole session:
//
//	client, err := billingapi.New(cfg, billingapi.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	s, err := session.New(session.Deps{
//		Subscriptions: client,
//		Counts:        client,
//		Activator:     client,
//	})
//
// The subscription payload is decoded field by field. A malformed limit is
// ignored rather than failing the fetch, and the tier may be a name or an ordinal.
package billingapi
