package telemetry

import (
	"context"
	"testing"

	"github.com/househero/backend/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Sum[int64]{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}
	return out
}

func TestNewPaymentMetrics_NilMeter(t *testing.T) {
	pm, err := NewPaymentMetrics(nil)
	require.Error(t, err)
	assert.Nil(t, pm)
}

func TestPaymentMetrics_RecordTransition(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	pm, err := NewPaymentMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	pm.RecordTransition(ctx, payment.StatusInEscrow, payment.StatusReleased, true)
	pm.RecordTransition(ctx, payment.StatusInEscrow, payment.StatusReleased, true)
	pm.RecordTransition(ctx, payment.StatusInEscrow, payment.StatusReleased, false)

	sums := collectSums(t, reader)

	transitions := sums["homeswift.payment.transitions"]
	require.Len(t, transitions.DataPoints, 2)
	byAuto := map[bool]int64{}
	for _, dp := range transitions.DataPoints {
		auto, ok := dp.Attributes.Value(attribute.Key("automatic"))
		require.True(t, ok)
		byAuto[auto.AsBool()] = dp.Value
	}
	assert.Equal(t, map[bool]int64{true: 2, false: 1}, byAuto)

	autoReleases := sums["homeswift.payment.auto_releases"]
	require.Len(t, autoReleases.DataPoints, 1)
	assert.Equal(t, int64(2), autoReleases.DataPoints[0].Value)
}
