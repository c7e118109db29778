package api

import (
	"context"
	"net/http"

	"github.com/lnkd/lnkd/internal/domain/score"
)

// ScoreDependencies evaluates a form synchronously.
type ScoreDependencies interface {
	Score(ctx context.Context, in score.Inputs) (score.Result, error)
}

// ScoreHandler handles synchronous score requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleScore handles POST /api/v1/score with a JSON body and
// GET /api/v1/score with query parameters.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"

	var in score.Inputs
	switch r.Method {
	case http.MethodGet:
		in = queryInputs(r.URL.Query())
	case http.MethodPost:
		var err error
		if in, err = readInputs(w, r, op); err != nil {
			writeKindError(w, err)
			return
		}
	default:
		http.NotFound(w, r)
		return
	}

	res, err := h.deps.Score(r.Context(), in)
	if err != nil {
		if ctxDone(r.Context()) {
			return
		}
		writeKindError(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
