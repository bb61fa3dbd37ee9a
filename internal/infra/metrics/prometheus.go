package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_operations_total",
		Help: "Total number of model operations, by slot, kind and status",
	}, []string{"slot", "kind", "status"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studio_operation_duration_seconds",
		Help:    "Duration of model load and predict operations",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"slot", "kind"})

	FramesSynthesizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studio_frames_synthesized_total",
		Help: "Total number of animation frames synthesized across all runs",
	})

	ActiveOperations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "studio_active_operations",
		Help: "Number of model operations currently running",
	})
)
