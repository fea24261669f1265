package lektrico

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-endpoint request outcomes and latency.
type Metrics struct {
	Requests *prometheus.CounterVec   // labels: endpoint, result=ok|connection_error|protocol_error|error
	Duration *prometheus.HistogramVec // labels: endpoint
}

// NewMetrics registers and returns the client metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lektrico_requests_total",
			Help: "Requests sent to Lektrico devices by endpoint and result.",
		}, []string{"endpoint", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lektrico_request_duration_seconds",
			Help:    "Round trip time of requests to Lektrico devices.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2, 4, 8},
		}, []string{"endpoint"}),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

func (m *Metrics) observe(endpoint string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, resultLabel(err)).Inc()
	m.Duration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConnection):
		return "connection_error"
	case errors.Is(err, ErrProtocol):
		return "protocol_error"
	default:
		return "error"
	}
}
