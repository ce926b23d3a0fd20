package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "document_store_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"operation", "collection", "result"},
	)
)

// RecordStoreOperation updates the store operation histogram and counter.
// The result label is "ok" or "error".
func RecordStoreOperation(operation, collection string, duration time.Duration, err error) {
	storeOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperationsTotal.WithLabelValues(operation, collection, result).Inc()
}
