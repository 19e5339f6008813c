package gateway

import "errors"

var (
	ErrStart    = errors.New("failed to start gateway server")
	ErrShutdown = errors.New("failed to shut down gateway server gracefully")
)
