package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RegisterGauge reports the store's cumulative totals through meter as
// osrequests.searches.total, labelled by kind and outcome. Unregister the
// returned registration before closing the store.
func RegisterGauge(meter metric.Meter, store *Store) (metric.Registration, error) {
	gauge, err := meter.Int64ObservableGauge(
		"osrequests.searches.total",
		metric.WithDescription("Cumulative searches recorded in the local history, by kind and outcome"),
		metric.WithUnit("{searches}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: failed to create search gauge: %w", err)
	}

	reg, err := meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		totals, err := store.Totals(ctx)
		if err != nil {
			return err
		}
		for _, t := range totals {
			o.ObserveInt64(gauge, t.Count, metric.WithAttributes(
				attribute.String("kind", t.Kind),
				attribute.String("outcome", t.Outcome),
			))
		}
		return nil
	}, gauge)
	if err != nil {
		return nil, fmt.Errorf("metrics: failed to register search gauge callback: %w", err)
	}
	return reg, nil
}
