// Package logger builds slog loggers for gatekit binaries and holds the attribute helpers
// used across the engine.
//
//	log := logger.New(
//		logger.WithEnvironment("production", "gatectl"),
//		logger.WithContextValue("session_id", session.IDKey{}),
//	)
//	log.WarnContext(ctx, "subscription fetch failed",
//		logger.Event("subscription.fetch_failed"),
//		logger.Error(err),
//	)
//
// Library components accept a *slog.Logger and fall back to Nop when none is given;
// they never write to the global default logger.
package logger
