package cli

import "errors"

var (
	// ErrDenied is returned by check and quota when the answer is no.
	// cmd/gatectl maps it to exit status 2.
	ErrDenied = errors.New("not allowed on the current plan")

	ErrActivationFailed   = errors.New("subscription activation failed")
	ErrRedisNotConfigured = errors.New("--redis-counts requires REDIS_URL")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrMissingServiceID   = errors.New("--service is required for per-service photo counts")
	ErrUnknownResource    = errors.New("unknown resource")
	ErrInvalidCount       = errors.New("invalid count")
	ErrSessionClosed      = errors.New("session closed")
)
