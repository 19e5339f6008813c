package telemetry

import "errors"

var ErrRegisterMetrics = errors.New("telemetry: failed to register metrics")
