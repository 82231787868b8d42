package api

import (
	"net/http"

	service "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/app"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/types"
)

// StatsProvider reports the bot's configuration and what its runs have done.
type StatsProvider interface {
	GetStats() map[string]interface{}
	RunTotals() service.RunTotals
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

type statsResponse struct {
	Service map[string]interface{} `json:"service"`
	Runs    service.RunTotals      `json:"runs"`
	// SaveRate is the share of processed pages that were written back.
	SaveRate float64 `json:"save_rate"`
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	totals := h.statsProvider.RunTotals()
	resp := statsResponse{
		Service: h.statsProvider.GetStats(),
		Runs:    totals,
	}
	if totals.Processed > 0 {
		resp.SaveRate = float64(totals.Outcomes[types.OutcomeChanged]) / float64(totals.Processed)
	}
	writeJSON(w, http.StatusOK, resp)
}
