package api

import (
	"net/http"
	"strings"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/normalize"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/types"
)

// maxEventsPerRequest caps a single ordering request.
const maxEventsPerRequest = 1000

// EventsHandler orders events that are not tied to a wiki page.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

type orderRequest struct {
	Events []types.RawEventRequest `json:"events"`
}

type parseRequest struct {
	Text string `json:"text"`
}

// HandleOrder handles POST /v1/events/order.
func (h *EventsHandler) HandleOrder(w http.ResponseWriter, r *http.Request) {
	const op = "api.order_events"
	var req orderRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Events) > maxEventsPerRequest {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	raws := make([]normalize.RawEvent, len(req.Events))
	for i, e := range req.Events {
		raws[i] = e.Raw()
	}
	groups, err := h.deps.OrderRaw(r.Context(), raws)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	resp, err := newOrderedResponse(h.deps, groups)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleParse handles POST /v1/events/parse.
func (h *EventsHandler) HandleParse(w http.ResponseWriter, r *http.Request) {
	const op = "api.parse_events"
	var req parseRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	groups, err := h.deps.ParseText(r.Context(), req.Text)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	resp, err := newOrderedResponse(h.deps, groups)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
