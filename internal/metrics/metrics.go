// Package metrics
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals produced per symbol and decision"},
		[]string{"symbol", "decision"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Order submissions per symbol and outcome"},
		[]string{"symbol", "status"},
	)
	PassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "passes_total", Help: "Watchlist passes per terminal outcome"},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(SignalsTotal, OrdersTotal, PassesTotal)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
