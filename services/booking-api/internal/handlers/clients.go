package handlers

import (
	"net/http"

	"github.com/amirv/salonbook/services/booking-api/internal/model"
	"github.com/amirv/salonbook/services/booking-api/internal/storage"
)

type ClientHandler struct {
	clients *storage.ClientRepository
}

func NewClientHandler(clients *storage.ClientRepository) *ClientHandler {
	return &ClientHandler{clients: clients}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to load clients")
		return
	}
	if clients == nil {
		clients = []model.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}
