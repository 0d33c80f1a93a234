package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

var (
	heapOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodestate_heap_operations_total",
			Help: "Total number of heap save and load operations",
		},
		[]string{"operation", "status"},
	)

	heapOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodestate_heap_operation_duration_seconds",
			Help:    "Heap save and load duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	fieldBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodestate_heap_field_bytes_total",
			Help: "Bytes written or read per heap field",
		},
		[]string{"operation", "field"},
	)
)

func recordOp(operation string, err error, seconds float64) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	heapOpsTotal.WithLabelValues(operation, status).Inc()
	heapOpDuration.WithLabelValues(operation).Observe(seconds)
}
