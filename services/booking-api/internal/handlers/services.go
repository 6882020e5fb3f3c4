package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/amirv/salonbook/services/booking-api/internal/model"
	"github.com/amirv/salonbook/services/booking-api/internal/storage"
)

type ServiceHandler struct {
	services *storage.ServiceRepository
}

func NewServiceHandler(services *storage.ServiceRepository) *ServiceHandler {
	return &ServiceHandler{services: services}
}

func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.ListActive(r.Context())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to load services")
		return
	}
	if services == nil {
		services = []model.Service{}
	}
	writeJSON(w, http.StatusOK, services)
}

type createServiceRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
	Description string  `json:"description"`
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}
	var fields []fieldError
	if strings.TrimSpace(req.Name) == "" {
		fields = append(fields, bodyField("name", "field required"))
	}
	if req.Price < 0 {
		fields = append(fields, bodyField("price", "ensure this value is greater than or equal to 0"))
	}
	if req.Duration <= 0 {
		fields = append(fields, bodyField("duration", "ensure this value is greater than 0"))
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	svc, err := h.services.Create(r.Context(), model.Service{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Duration:    req.Duration,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to create service")
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}
