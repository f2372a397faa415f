package api

import (
	"errors"
	"net/http"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/ranking"
	"github.com/okian/qualify/internal/domain/types"
)

// RankingHandler handles standings and recompute requests.
type RankingHandler struct {
	deps RankingDependencies
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies) *RankingHandler {
	return &RankingHandler{deps: deps}
}

type standingsResponse struct {
	Category  model.Category   `json:"category"`
	Standings []types.Standing `json:"standings"`
}

type recomputeResponse struct {
	Updated  int               `json:"updated"`
	Rankings []ranking.Update  `json:"rankings"`
	Failures []ranking.Failure `json:"failures,omitempty"`
	Partial  bool              `json:"partial"`
}

// HandleStandings handles GET /standings?category= requests.
func (h *RankingHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.standings"
	c, err := model.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, wrapKind(op, ErrBadRequest, err))
		return
	}
	rows, err := h.deps.Standings(r.Context(), c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rows == nil {
		rows = []types.Standing{}
	}
	writeJSON(w, http.StatusOK, standingsResponse{Category: c, Standings: rows})
}

// HandleRecompute handles POST /rankings/recompute requests. A partial batch
// is still a success; the skipped teams are listed in failures.
func (h *RankingHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	batch, err := h.deps.Recompute(r.Context())
	var be *ranking.BatchError
	if err != nil && !errors.As(err, &be) {
		writeServiceError(w, err)
		return
	}
	rankings := batch.Rankings
	if rankings == nil {
		rankings = []ranking.Update{}
	}
	writeJSON(w, http.StatusOK, recomputeResponse{
		Updated:  len(batch.Updates),
		Rankings: rankings,
		Failures: batch.Failures,
		Partial:  be != nil,
	})
}
