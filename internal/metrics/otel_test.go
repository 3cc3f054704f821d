package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRegisterGauge(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.RecordSearch(ctx, "match", "books", "success", time.Millisecond))
	require.NoError(t, store.RecordSearch(ctx, "match", "books", "success", time.Millisecond))
	require.NoError(t, store.RecordSearch(ctx, "sum", "sales", "error", time.Millisecond))

	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	reg, err := RegisterGauge(provider.Meter("osrequests/test"), store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Unregister() })

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "osrequests.searches.total" {
				continue
			}
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			require.True(t, ok, "unexpected data type %T", m.Data)
			for _, dp := range gauge.DataPoints {
				kind, _ := dp.Attributes.Value("kind")
				outcome, _ := dp.Attributes.Value("outcome")
				got[kind.AsString()+"/"+outcome.AsString()] = dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"match/success": 2, "sum/error": 1}, got)
}
