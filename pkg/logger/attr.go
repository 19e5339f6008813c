package logger

import (
	"fmt"
	"log/slog"
	"time"
)

// Error records err under "error". Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Event records the telemetry event name under "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Component records the emitting component under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// SessionID records the entitlement session under "session_id".
func SessionID(id fmt.Stringer) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.String("session_id", id.String())
}

// Tier records a subscription tier under "tier".
func Tier(t fmt.Stringer) slog.Attr {
	return slog.String("tier", t.String())
}

// Resource records a usage counter key under "resource".
func Resource(key string) slog.Attr {
	return slog.String("resource", key)
}

// Feature records a gated feature name under "feature".
func Feature(name string) slog.Attr {
	return slog.String("feature", name)
}

// Duration records d under "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Attempt records a retry attempt number under "attempt".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}
