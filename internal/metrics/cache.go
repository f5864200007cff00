package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EntryCounter reports how many entries a cache holds.
type EntryCounter interface {
	Len() int
}

// RegisterCacheEntries exports the entry count of cache as <namespace>_cache_entries,
// observed on every collection.
func RegisterCacheEntries(meterProvider metric.MeterProvider, namespace, driver string, cache EntryCounter) error {
	meter := meterProvider.Meter(namespace)
	driverAttr := metric.WithAttributes(attribute.String("driver", driver))

	_, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_cache_entries", namespace),
		metric.WithDescription("Unexpired entries held by the cache"),
		metric.WithUnit("{entry}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(cache.Len()), driverAttr)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create cache entries gauge: %w", err)
	}
	return nil
}
