package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Transport metrics
	CallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podlink_calls_total",
			Help: "Total number of daemon RPC calls by method",
		},
		[]string{"method"},
	)

	CallErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podlink_call_errors_total",
			Help: "Total number of failed daemon RPC calls by fault kind",
		},
		[]string{"kind"},
	)

	SessionsOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podlink_sessions_opened_total",
			Help: "Total number of transport sessions opened by variant",
		},
		[]string{"variant"},
	)

	// Tunnel metrics
	TunnelsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "podlink_tunnels_created_total",
			Help: "Total number of secure tunnels bored",
		},
	)

	TunnelReuse = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "podlink_tunnel_reuse_total",
			Help: "Total number of times a cached tunnel was reused",
		},
	)
)

// registry is owned by the library so its collectors never collide with
// the embedding program's default registry.
var registry = prometheus.NewRegistry()

func init() {
	// Register all metrics
	registry.MustRegister(CallsTotal)
	registry.MustRegister(CallErrorsTotal)
	registry.MustRegister(SessionsOpened)
	registry.MustRegister(TunnelsCreated)
	registry.MustRegister(TunnelReuse)
}

// Registry returns the library-owned registry, for programs that gather it
// into their own exposition.
func Registry() *prometheus.Registry {
	return registry
}

// Handler returns the Prometheus HTTP handler for programs embedding the
// library that want to expose client-side metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
