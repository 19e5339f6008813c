// Package redis connects to Redis and exposes usage counters stored there.
//
// Connect retries the initial ping according to Config. CountSource reads
// per-account counters and implements usage.Fetcher, so it can replace the
// billing API as the count backend of a session:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	counts, err := redis.NewCountSource(client, cfg.CountPrefix, accountID)
//	if err != nil {
//		return err
//	}
//	s, err := session.New(session.Deps{
//		Subscriptions: api,
//		Counts:        counts,
//		Activator:     api,
//	})
//
// SetCount and Add let operators seed or correct the stored counters.
//
// Healthcheck wraps a client in a check suitable for readiness endpoints.
package redis
