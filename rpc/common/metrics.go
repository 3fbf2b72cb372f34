package common

import (
	"fmt"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/VictoriaMetrics/metrics"
	"net/http"
	"time"
)

// --------------------------------------------------------------------------
// Connection metrics (VictoriaMetrics)
// --------------------------------------------------------------------------

// ConnectionMetrics counts connection outcomes of one server transport
type ConnectionMetrics struct {
	outcomes map[outcome.Kind]*metrics.Counter
	duration *metrics.Histogram
}

// NewConnectionMetrics registers (or reuses) the outcome counters for the given transport name
func NewConnectionMetrics(transport string) *ConnectionMetrics {
	m := &ConnectionMetrics{
		outcomes: make(map[outcome.Kind]*metrics.Counter),
		duration: metrics.GetOrCreateHistogram(fmt.Sprintf(`oneshot_connection_duration_seconds{transport=%q}`, transport)),
	}
	for _, kind := range outcome.Kinds() {
		name := fmt.Sprintf(`oneshot_connections_total{transport=%q,outcome=%q}`, transport, kind)
		m.outcomes[kind] = metrics.GetOrCreateCounter(name)
	}
	return m
}

// Observe records one finished connection
func (m *ConnectionMetrics) Observe(o outcome.Outcome) {
	if c, ok := m.outcomes[o.Kind]; ok {
		c.Inc()
	}
	m.duration.Update(o.Duration.Seconds())
}

// Count returns how often the kind was observed
func (m *ConnectionMetrics) Count(kind outcome.Kind) uint64 {
	if c, ok := m.outcomes[kind]; ok {
		return c.Get()
	}
	return 0
}

// RegisterActiveGauge exposes the number of in-flight connections.
// The gauge is registered once per transport name, later calls are ignored.
func RegisterActiveGauge(transport string, active func() int) {
	name := fmt.Sprintf(`oneshot_connections_active{transport=%q}`, transport)
	metrics.GetOrCreateGauge(name, func() float64 {
		return float64(active())
	})
}

// NewMetricsServer returns an http server exposing all metrics in prometheus text format on /metrics
func NewMetricsServer(endpoint string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return &http.Server{
		Addr:              endpoint,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
