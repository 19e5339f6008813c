package entitlement

import "errors"

var ErrUnknownFeature = errors.New("entitlement: unknown feature")
