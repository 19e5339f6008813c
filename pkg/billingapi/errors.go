package billingapi

import "errors"

var (
	ErrInvalidConfig    = errors.New("billingapi: invalid configuration")
	ErrCircuitOpen      = errors.New("billingapi: circuit breaker is open")
	ErrPermanentFailure = errors.New("billingapi: permanent failure")
	ErrTemporaryFailure = errors.New("billingapi: temporary failure")
	ErrTimeout          = errors.New("billingapi: request timeout")
	ErrDecodeResponse   = errors.New("billingapi: failed to decode response")
	ErrUnknownResource  = errors.New("billingapi: unknown usage resource")
)

// IsCircuitOpen reports whether err was caused by an open circuit breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}
