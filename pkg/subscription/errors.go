package subscription

import "errors"

var (
	ErrUnknownTier   = errors.New("subscription: provider returned an unknown tier")
	ErrEmptySnapshot = errors.New("subscription: provider returned no subscription")
	ErrStoreClosed   = errors.New("subscription: store is closed")
)
