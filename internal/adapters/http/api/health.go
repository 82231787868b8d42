package api

import (
	"net/http"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler handles liveness and readiness requests.
type HealthHandler struct {
	stats StatsProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{stats: stats}
}

// HandleHealth handles GET /healthz requests by exposing the bot's Prometheus
// metrics. A scrape that succeeds is the liveness signal.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	// Use our custom metrics registry to serve metrics
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

type readyResponse struct {
	Ready       bool `json:"ready"`
	ActiveRuns  int  `json:"active_runs"`
	QueueLength int  `json:"queue_length"`
}

// HandleReady handles GET /readyz. It answers 503 until the sorter's workers
// are running, since runs cannot be started before then.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	stats := h.stats.GetStats()
	resp := readyResponse{ActiveRuns: h.stats.RunTotals().Active}
	resp.Ready, _ = stats["started"].(bool)
	resp.QueueLength, _ = stats["queueLength"].(int)

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
