package session

import "errors"

var (
	ErrMissingDependency = errors.New("session: missing backend dependency")
	ErrClosed            = errors.New("session: closed")
	ErrNoSession         = errors.New("session: no session in context")
	ErrNoToken           = errors.New("session: no credential")
	ErrRegistryClosed    = errors.New("session: registry closed")
)
