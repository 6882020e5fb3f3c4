package handlers

import (
	"net/http"
	"time"

	"github.com/amirv/salonbook/services/booking-api/internal/storage"
)

type StatsHandler struct {
	stats *storage.StatsRepository
}

func NewStatsHandler(stats *storage.StatsRepository) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Collect(r.Context(), time.Now())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to collect statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
