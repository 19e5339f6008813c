package billingapi

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics exposes the circuit breaker of every operation as
// gatekit_billing_breaker_state{operation}: 0 closed, 1 half-open, 2 open.
// Gauges are read at scrape time.
func (c *Client) RegisterMetrics(reg prometheus.Registerer) error {
	var errs []error
	for op, b := range c.breakers {
		g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "gatekit_billing_breaker_state",
			Help:        "Circuit breaker state per billing API operation: 0 closed, 1 half-open, 2 open.",
			ConstLabels: prometheus.Labels{"operation": op},
		}, func() float64 {
			return float64(b.State())
		})
		if err := reg.Register(g); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
