package tier

import "errors"

var (
	ErrUnknownTier       = errors.New("unknown subscription tier")
	ErrNegativeQuota     = errors.New("bounded quota must not be negative")
	ErrUnknownQuotaField = errors.New("unknown quota field")
)
