package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/telemetry"
)

func TestTelemetry_Record(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	reg := prometheus.NewRegistry()
	tel, err := telemetry.New(logger.New(logger.WithOutput(buf)), reg)
	require.NoError(t, err)

	tel.Record(context.Background(), telemetry.SubscriptionFetchFailed, slog.String("reason", "timeout"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "subscription.fetch_failed", entry["event"])
	assert.Equal(t, "timeout", entry["reason"])

	n, err := testutil.GatherAndCount(reg, "gatekit_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTelemetry_RegisterTwice(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	first, err := telemetry.New(nil, reg)
	require.NoError(t, err)
	second, err := telemetry.New(nil, reg)
	require.NoError(t, err)

	first.Record(context.Background(), telemetry.UsageFetchFailed)
	second.Record(context.Background(), telemetry.UsageFetchFailed)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Len(t, families[0].GetMetric(), 1)
	assert.Equal(t, float64(2), families[0].GetMetric()[0].GetCounter().GetValue())
}

func TestTelemetry_NoRegistry(t *testing.T) {
	t.Parallel()

	tel, err := telemetry.New(nil, nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		tel.Record(context.Background(), telemetry.ActivationFailed)
	})
}

func TestMemoryAndMulti(t *testing.T) {
	t.Parallel()

	a, b := &telemetry.Memory{}, &telemetry.Memory{}
	rec := telemetry.Multi(a, nil, b)

	rec.Record(context.Background(), telemetry.EntitlementDenied, logger.Feature("crm"))
	rec.Record(context.Background(), telemetry.EntitlementDenied)

	assert.Equal(t, 2, a.Count(telemetry.EntitlementDenied))
	assert.Equal(t, 2, b.Count(telemetry.EntitlementDenied))
	assert.Equal(t, 0, a.Count(telemetry.ActivationFailed))
	require.Len(t, a.Events(), 2)
	assert.Equal(t, "crm", a.Events()[0].Attrs[0].Value.String())

	assert.NotNil(t, telemetry.OrNop(nil))
}
