package api

import (
	"errors"
	"io"
	"net/http"

	service "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/app"
	"github.com/go-chi/chi/v5"
)

// RunsHandler starts and reports batch runs.
type RunsHandler struct {
	deps Dependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps Dependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

type runRequest struct {
	Titles []string `json:"titles"`
}

// HandleStart handles POST /v1/runs. An empty body or title list queues every
// page that uses the games template.
func (h *RunsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_run"
	var req runRequest
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	st, err := h.deps.StartRun(r.Context(), req.Titles)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

// HandleGet handles GET /v1/runs/{id}.
func (h *RunsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_run"
	st, err := h.deps.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, runResponse{RunStatus: st, Complete: st.Done()})
}

type runResponse struct {
	service.RunStatus
	Complete bool `json:"done"`
}
