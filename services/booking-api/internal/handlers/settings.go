package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amirv/salonbook/services/booking-api/internal/model"
	"github.com/amirv/salonbook/services/booking-api/internal/storage"
)

type SettingsHandler struct {
	settings *storage.SettingsRepository
}

func NewSettingsHandler(settings *storage.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.GetOrCreate(r.Context())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.NotificationReminderHours <= 0 {
		req.NotificationReminderHours = 24
	}
	s, err := h.settings.Update(r.Context(), req)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
