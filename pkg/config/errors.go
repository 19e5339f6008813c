package config

import "errors"

var (
	ErrParsingConfig  = errors.New("failed to parse environment variables into config")
	ErrLoadingEnvFile = errors.New("failed to load env file")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNilPointer     = errors.New("nil pointer passed to config.Load")
)
