package metric

import "github.com/prometheus/client_golang/prometheus"

// Namespace for all service metrics.
const Namespace = "posturecoach"

// Metrics contains the core service-level metrics.
type Metrics struct {
	SessionsActive     prometheus.Gauge
	SessionsTotal      prometheus.Counter
	FramesReceived     *prometheus.CounterVec
	FramesProcessed    *prometheus.CounterVec
	FramesThrottled    prometheus.Counter
	EstimationDuration prometheus.Histogram
	ErrorsTotal        *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all core metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Number of active WebSocket sessions",
		}),

		SessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "sessions",
			Name:      "total",
			Help:      "Total number of WebSocket sessions accepted",
		}),

		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "frames",
			Name:      "received_total",
			Help:      "Total frames received, by protocol mode",
		}, []string{"mode"}),

		FramesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "frames",
			Name:      "processed_total",
			Help:      "Total frames run through the full pipeline, by outcome",
		}, []string{"outcome"}),

		FramesThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "frames",
			Name:      "throttled_total",
			Help:      "Total frames answered from the cached result",
		}),

		EstimationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "pose",
			Name:      "estimation_duration_seconds",
			Help:      "Pose estimation round-trip duration",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),

		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "errors",
			Name:      "total",
			Help:      "Total errors by component and type",
		}, []string{"component", "type"}),
	}
}
