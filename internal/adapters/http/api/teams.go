package api

import (
	"net/http"
	"strings"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/types"
)

// IdempotencyHeader carries the client key that makes POST /teams safe to retry.
const IdempotencyHeader = "Idempotency-Key"

// TeamsHandler handles team requests.
type TeamsHandler struct {
	deps TeamDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

type listResponse struct {
	Teams []model.Team `json:"teams"`
	Count int          `json:"count"`
}

// HandleCreate handles POST /teams requests.
func (h *TeamsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_team"
	var req registerRequest
	if err := decode(r, op, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	team, replayed, err := h.deps.RegisterOnce(r.Context(), key, req.registration())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if replayed {
		writeJSON(w, http.StatusOK, team)
		return
	}
	w.Header().Set("Location", "/teams/"+team.ID)
	writeJSON(w, http.StatusCreated, team)
}

// HandleList handles GET /teams?category=&status= requests.
func (h *TeamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_teams"
	var filter types.Filter
	if c := r.URL.Query().Get("category"); c != "" {
		cat, err := model.ParseCategory(c)
		if err != nil {
			writeServiceError(w, wrapKind(op, ErrBadRequest, err))
			return
		}
		filter.Category = cat
	}
	if s := r.URL.Query().Get("status"); s != "" {
		st, err := model.ParseStatus(s)
		if err != nil {
			writeServiceError(w, wrapKind(op, ErrBadRequest, err))
			return
		}
		filter.Status = st
	}

	teams, err := h.deps.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if teams == nil {
		teams = []model.Team{}
	}
	writeJSON(w, http.StatusOK, listResponse{Teams: teams, Count: len(teams)})
}

// HandleGet handles GET /teams/{id} requests.
func (h *TeamsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	team, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleUpdate handles PATCH /teams/{id} requests.
func (h *TeamsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_team"
	var req updateRequest
	if err := decode(r, op, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	team, err := h.deps.Update(r.Context(), r.PathValue("id"), req.changes(), req.Version)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandlePoints handles GET /teams/{id}/points requests.
func (h *TeamsHandler) HandlePoints(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.Points(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
