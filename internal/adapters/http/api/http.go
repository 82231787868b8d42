// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	service "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/app"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/normalize"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/types"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	OrderRaw(ctx context.Context, raws []normalize.RawEvent) ([][]model.Event, error)
	ParseText(ctx context.Context, text string) ([][]model.Event, error)
	RenderField(groups [][]model.Event) (string, error)

	PageEvents(ctx context.Context, title string) ([][]model.Event, error)
	SortPage(ctx context.Context, runID, title string) (types.PageResult, error)

	StartRun(ctx context.Context, titles []string) (service.RunStatus, error)
	Run(ctx context.Context, id string) (service.RunStatus, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	eventsHandler *EventsHandler
	pagesHandler  *PagesHandler
	runsHandler   *RunsHandler

	corsOrigins    []string
	requestTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithRequestTimeout bounds the time a handler may run.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(statsProvider),
		statsHandler:   NewStatsHandler(statsProvider),
		eventsHandler:  NewEventsHandler(deps),
		pagesHandler:   NewPagesHandler(deps),
		runsHandler:    NewRunsHandler(deps),
		corsOrigins:    []string{"*"},
		requestTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/events/order", MetricsMiddleware(s.eventsHandler.HandleOrder, "events_order"))
		r.Post("/events/parse", MetricsMiddleware(s.eventsHandler.HandleParse, "events_parse"))
		r.Post("/pages/sort", MetricsMiddleware(s.pagesHandler.HandleSort, "pages_sort"))
		r.Get("/pages/{title}/events", MetricsMiddleware(s.pagesHandler.HandleGetEvents, "pages_events"))
		r.Post("/runs", MetricsMiddleware(s.runsHandler.HandleStart, "runs_start"))
		r.Get("/runs/{id}", MetricsMiddleware(s.runsHandler.HandleGet, "runs_get"))
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

// orderedResponse is the ordered form of a match's events.
type orderedResponse struct {
	Groups [][]types.EventView `json:"groups"`
	Value  string              `json:"value"`
	Count  int                 `json:"count"`
}

func newOrderedResponse(deps Dependencies, groups [][]model.Event) (orderedResponse, error) {
	views, err := types.GroupViews(groups)
	if err != nil {
		return orderedResponse{}, err
	}
	value, err := deps.RenderField(groups)
	if err != nil {
		return orderedResponse{}, err
	}
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return orderedResponse{Groups: views, Value: value, Count: n}, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure picks the status from the error's kind.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
