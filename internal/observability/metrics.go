package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Gateway operation metrics
	gatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_gateway_requests_total",
		Help: "Total number of gateway operations",
	}, []string{"operation", "status"})

	gatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agent_gateway_request_duration_seconds",
		Help:    "Gateway operation latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
	}, []string{"operation"})

	// Audio metrics
	audioBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_gateway_audio_bytes_total",
		Help: "Total audio bytes passed through the gateway",
	}, []string{"direction"}) // direction: "in" or "out"

	// HTTP metrics
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_gateway_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"path", "method", "code"})

	httpDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agent_gateway_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})

	// Agent store metrics
	agentStoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_gateway_agent_store_operations_total",
		Help: "Total number of agent store operations",
	}, []string{"operation", "status"})
)

// RecordGatewayRequest records one completed gateway operation.
// status is "ok" or the error kind; duration of zero means the call
// was rejected before reaching the provider.
func RecordGatewayRequest(operation, status string, duration time.Duration) {
	gatewayRequests.WithLabelValues(operation, status).Inc()
	if duration > 0 {
		gatewayLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordAudioBytes records audio bytes passing through the gateway
func RecordAudioBytes(direction string, n int64) {
	audioBytes.WithLabelValues(direction).Add(float64(n))
}

// RecordHTTPRequest records one served HTTP request
func RecordHTTPRequest(path, method, code string, duration time.Duration) {
	httpRequests.WithLabelValues(path, method, code).Inc()
	httpDuration.Observe(duration.Seconds())
}

// RecordAgentStoreOp records one agent store operation
func RecordAgentStoreOp(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	agentStoreOps.WithLabelValues(operation, status).Inc()
}
