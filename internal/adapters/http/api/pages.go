package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// PagesHandler reads and sorts single wiki pages.
type PagesHandler struct {
	deps Dependencies
}

// NewPagesHandler creates a new pages handler.
func NewPagesHandler(deps Dependencies) *PagesHandler {
	return &PagesHandler{deps: deps}
}

type sortRequest struct {
	Title string `json:"title"`
}

type pageEventsResponse struct {
	Title string `json:"title"`
	orderedResponse
}

// HandleSort handles POST /v1/pages/sort. The request ID doubles as the run ID
// in the edit journal.
func (h *PagesHandler) HandleSort(w http.ResponseWriter, r *http.Request) {
	const op = "api.sort_page"
	var req sortRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.SortPage(r.Context(), chimiddleware.GetReqID(r.Context()), title)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleGetEvents handles GET /v1/pages/{title}/events.
func (h *PagesHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.page_events"
	title, err := url.PathUnescape(chi.URLParam(r, "title"))
	if err != nil || strings.TrimSpace(title) == "" {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	groups, err := h.deps.PageEvents(r.Context(), title)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	resp, err := newOrderedResponse(h.deps, groups)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, pageEventsResponse{Title: title, orderedResponse: resp})
}
