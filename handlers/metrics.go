package handlers

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandleMetrics serves g in the Prometheus text format.
func HandleMetrics(g prometheus.Gatherer) func(*core.RequestEvent) error {
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return func(e *core.RequestEvent) error {
		h.ServeHTTP(e.Response, e.Request)
		return nil
	}
}
