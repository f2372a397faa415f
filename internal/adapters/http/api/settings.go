package api

import (
	"net/http"

	"github.com/okian/qualify/internal/domain/model"
)

// SettingsHandler handles the selection settings.
type SettingsHandler struct {
	deps SettingsDependencies
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(deps SettingsDependencies) *SettingsHandler {
	return &SettingsHandler{deps: deps}
}

// HandleGet handles GET /settings requests.
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Settings(r.Context()))
}

// HandlePut handles PUT /settings requests. The body replaces the whole
// snapshot; a full recompute is scheduled by the service.
func (h *SettingsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_settings"
	var req model.Settings
	if err := decode(r, op, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	s, err := h.deps.UpdateSettings(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s)
}
