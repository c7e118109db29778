package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lnkd/lnkd/internal/domain/calculation"
	"github.com/lnkd/lnkd/internal/domain/score"
)

const (
	calculationsPrefix = "/api/v1/calculations/"
	idempotencyHeader  = "Idempotency-Key"
	maxIdempotencyKey  = 255
)

// CalculationDependencies defines the asynchronous calculation operations.
type CalculationDependencies interface {
	// SubmitOnce queues a new calculation. A repeated non-empty key returns
	// the calculation created by its first use.
	SubmitOnce(ctx context.Context, key string, in score.Inputs) (calculation.Calculation, error)
	Recalculate(ctx context.Context, id string, in score.Inputs) (calculation.Calculation, error)
	Get(ctx context.Context, id string) (calculation.Calculation, error)
}

// CalculationsHandler handles calculation requests.
type CalculationsHandler struct {
	deps CalculationDependencies
}

// NewCalculationsHandler creates a new calculations handler.
func NewCalculationsHandler(deps CalculationDependencies) *CalculationsHandler {
	return &CalculationsHandler{deps: deps}
}

type acceptedResponse struct {
	ID    string            `json:"id"`
	Phase calculation.Phase `json:"phase"`
}

// HandleCreate handles POST /api/v1/calculations requests. An optional
// Idempotency-Key header makes retries return the original calculation.
func (h *CalculationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_calculation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if len(key) > maxIdempotencyKey {
		writeKindError(w, WrapKind(op, ErrBadRequest, errors.New("idempotency key too long")))
		return
	}
	in, err := readInputs(w, r, op)
	if err != nil {
		writeKindError(w, err)
		return
	}
	c, err := h.deps.SubmitOnce(r.Context(), key, in)
	if err != nil {
		writeKindError(w, classify(op, err))
		return
	}
	w.Header().Set("Location", calculationsPrefix+c.ID)
	writeJSON(w, http.StatusAccepted, acceptedResponse{ID: c.ID, Phase: c.Phase})
}

// HandleByID handles GET and PUT /api/v1/calculations/{id} requests.
// PUT recalculates a done calculation with a new form.
func (h *CalculationsHandler) HandleByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.calculation"
	id := strings.TrimPrefix(r.URL.Path, calculationsPrefix)
	if id == "" || strings.Contains(id, "/") {
		writeKindError(w, NewKind(op, ErrBadRequest))
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := h.deps.Get(r.Context(), id)
		if err != nil {
			writeKindError(w, classify(op, err))
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodPut:
		in, err := readInputs(w, r, op)
		if err != nil {
			writeKindError(w, err)
			return
		}
		c, err := h.deps.Recalculate(r.Context(), id, in)
		if err != nil {
			writeKindError(w, classify(op, err))
			return
		}
		writeJSON(w, http.StatusAccepted, acceptedResponse{ID: c.ID, Phase: c.Phase})
	default:
		http.NotFound(w, r)
	}
}
