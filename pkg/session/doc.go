// Package session ties the subscription store, usage counter, entitlement
// evaluator and activation flow of one signed-in user together.
//
// A Session replaces process-wide caches: create it at login, attach it to
// request contexts with WithSession, and Close it at logout.
//
//	s, err := session.New(session.Deps{
//		Subscriptions: client,
//		Counts:        client,
//		Activator:     client,
//	}, session.WithTelemetry(rec))
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	if res := s.Entitlement.CanAddService(ctx); !res.Allowed {
//		return errors.New(res.Message)
//	}
//
// Servers that gate many users use a Registry instead. It opens one session
// per bearer credential on first use and closes it on logout, idle timeout or
// lifetime expiry:
//
//	reg := session.NewRegistry(opener, session.DefaultRegistryConfig())
//	defer reg.Close()
//	handler = reg.Middleware(session.NewHeaderTransport("Authorization"))(router)
package session
