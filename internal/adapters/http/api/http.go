// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/lnkd/lnkd/internal/adapters/mq/queue"
	"github.com/lnkd/lnkd/internal/adapters/repository"
	"github.com/lnkd/lnkd/internal/domain/calculation"
	"github.com/lnkd/lnkd/internal/domain/score"
)

// maxBodyBytes bounds request bodies; a score form is four short values.
const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreDependencies
	CalculationDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	scoreHandler        *ScoreHandler
	calculationsHandler *CalculationsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(deps),
		scoreHandler:        NewScoreHandler(deps),
		calculationsHandler: NewCalculationsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/score", MetricsMiddleware(s.scoreHandler.HandleScore, "score"))
	mux.HandleFunc("/api/v1/calculations", MetricsMiddleware(s.calculationsHandler.HandleCreate, "calculations"))
	mux.HandleFunc("/api/v1/calculations/", MetricsMiddleware(s.calculationsHandler.HandleByID, "calculation"))
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

// writeKindError maps an error kind to its status code.
func writeKindError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBackpressure):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// classify translates upstream errors into API kinds.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return WrapKind(op, ErrNotFound, err)
	case errors.Is(err, queue.ErrFull):
		return WrapKind(op, ErrBackpressure, err)
	case errors.Is(err, queue.ErrClosed):
		return WrapKind(op, ErrUnavailable, err)
	case errors.Is(err, calculation.ErrInvalidTransition):
		return WrapKind(op, ErrBadRequest, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// readInputs decodes a score form from a JSON body.
func readInputs(w http.ResponseWriter, r *http.Request, op string) (score.Inputs, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return score.Inputs{}, WrapKind(op, ErrBadRequest, err)
	}
	in, err := decodeScoreRequest(body)
	if err != nil {
		return score.Inputs{}, WrapKind(op, ErrBadRequest, err)
	}
	return in, nil
}

// ctxDone reports whether the request was abandoned by the client.
func ctxDone(ctx context.Context) bool {
	return ctx.Err() != nil
}
