// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/qualify/internal/adapters/repository"
	"github.com/okian/qualify/internal/domain/dedupe"
	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/ranking"
	"github.com/okian/qualify/internal/domain/scoring"
	"github.com/okian/qualify/internal/domain/status"
	"github.com/okian/qualify/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TeamDependencies
	RankingDependencies
	SettingsDependencies
}

// TeamDependencies covers team registration, reads and updates.
type TeamDependencies interface {
	RegisterOnce(ctx context.Context, key string, reg types.Registration) (model.Team, bool, error)
	Get(ctx context.Context, id string) (model.Team, error)
	List(ctx context.Context, filter types.Filter) ([]model.Team, error)
	Update(ctx context.Context, id string, changes status.Changes, version int64) (model.Team, error)
	Points(ctx context.Context, id string) (scoring.Breakdown, error)
}

// RankingDependencies covers standings and batch recomputation.
type RankingDependencies interface {
	Standings(ctx context.Context, c model.Category) ([]types.Standing, error)
	Recompute(ctx context.Context) (ranking.Batch, error)
}

// SettingsDependencies covers the selection settings snapshot.
type SettingsDependencies interface {
	Settings(ctx context.Context) model.Settings
	UpdateSettings(ctx context.Context, s model.Settings) (model.Settings, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	teamsHandler    *TeamsHandler
	rankingHandler  *RankingHandler
	settingsHandler *SettingsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		teamsHandler:    NewTeamsHandler(deps),
		rankingHandler:  NewRankingHandler(deps),
		settingsHandler: NewSettingsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /teams", MetricsMiddleware(s.teamsHandler.HandleCreate, "teams"))
	mux.HandleFunc("GET /teams", MetricsMiddleware(s.teamsHandler.HandleList, "teams"))
	mux.HandleFunc("GET /teams/{id}", MetricsMiddleware(s.teamsHandler.HandleGet, "team"))
	mux.HandleFunc("PATCH /teams/{id}", MetricsMiddleware(s.teamsHandler.HandleUpdate, "team"))
	mux.HandleFunc("GET /teams/{id}/points", MetricsMiddleware(s.teamsHandler.HandlePoints, "points"))

	mux.HandleFunc("GET /standings", MetricsMiddleware(s.rankingHandler.HandleStandings, "standings"))
	mux.HandleFunc("POST /rankings/recompute", MetricsMiddleware(s.rankingHandler.HandleRecompute, "recompute"))

	mux.HandleFunc("GET /settings", MetricsMiddleware(s.settingsHandler.HandleGet, "settings"))
	mux.HandleFunc("PUT /settings", MetricsMiddleware(s.settingsHandler.HandlePut, "settings"))
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

// writeServiceError translates an upstream error kind to a status code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err)
	case errors.Is(err, model.ErrIllegalTransition):
		writeError(w, http.StatusConflict, "illegal_transition", err)
	case errors.Is(err, repository.ErrVersionConflict):
		writeError(w, http.StatusConflict, "version_conflict", err)
	case errors.Is(err, dedupe.ErrInFlight):
		writeError(w, http.StatusConflict, "duplicate_in_flight", err)
	case errors.Is(err, model.ErrConfiguration):
		writeError(w, http.StatusInternalServerError, "configuration_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
