// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondly_gateway_requests_total",
			Help: "Total number of AI gateway calls",
		},
		[]string{"operation", "outcome"},
	)

	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bondly_gateway_request_duration_seconds",
			Help:    "AI gateway call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"operation"},
	)

	ViewActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondly_view_actions_total",
			Help: "Total number of view actions by result",
		},
		[]string{"view", "result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bondly_active_sessions",
			Help: "Number of active shell sessions",
		},
	)

	CaptureConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bondly_capture_connections",
			Help: "Number of open capture device streams",
		},
	)
)

// ObserveGateway records one gateway call.
func ObserveGateway(operation string, started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	GatewayRequests.WithLabelValues(operation, outcome).Inc()
	GatewayDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
