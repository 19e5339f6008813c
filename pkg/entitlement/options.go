package entitlement

import "github.com/dmitrymomot/gatekit/pkg/telemetry"

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithTelemetry reports denials and unknown feature names to rec.
func WithTelemetry(rec telemetry.Recorder) Option {
	return func(e *Evaluator) { e.rec = rec }
}
