// Package api declares HTTP contracts and route registration for the
// leaderboard engine. The layer carries no policy: it is a thin JSON
// surface over the service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CuSO4Deposit/arctrack/internal/adapters/charts"
	"github.com/CuSO4Deposit/arctrack/internal/adapters/repository"
	"github.com/CuSO4Deposit/arctrack/internal/app"
	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
	"github.com/CuSO4Deposit/arctrack/internal/domain/scoring"
	"github.com/CuSO4Deposit/arctrack/pkg/metrics"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Submit(ctx context.Context, user string, chart model.ChartID, pure, maxPure, far int, submittedAt int64) (app.SubmitResult, error)
	Best30(ctx context.Context, user string) ([]model.PlayRecord, error)
	Recent30(ctx context.Context, user string) ([]model.PlayRecord, error)
	Recent10(ctx context.Context, user string) ([]model.PlayRecord, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps Dependencies
}

// NewServer creates an API server over the given service.
func NewServer(deps Dependencies) *Server {
	return &Server{deps: deps}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", MetricsMiddleware(s.handleHealth, "healthz")).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/scores", MetricsMiddleware(s.handleSubmit, "scores")).Methods(http.MethodPost)
	v1.HandleFunc("/users/{user}/best30", MetricsMiddleware(s.handleBest30, "best30")).Methods(http.MethodGet)
	v1.HandleFunc("/users/{user}/recent30", MetricsMiddleware(s.handleRecent30, "recent30")).Methods(http.MethodGet)
	v1.HandleFunc("/users/{user}/recent10", MetricsMiddleware(s.handleRecent10, "recent10")).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
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

// writeServiceError translates service errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, charts.ErrChartNotFound):
		writeError(w, http.StatusNotFound, "chart_not_found", err)
	case errors.Is(err, model.ErrInvalidCounts), errors.Is(err, scoring.ErrInvalidChart):
		writeError(w, http.StatusBadRequest, "invalid_submission", err)
	case errors.Is(err, repository.ErrStorage):
		writeError(w, http.StatusInternalServerError, "storage_failure", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
