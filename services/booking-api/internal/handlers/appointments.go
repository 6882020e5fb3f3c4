package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/amirv/salonbook/libs/db"
	"github.com/amirv/salonbook/services/booking-api/internal/model"
	"github.com/amirv/salonbook/services/booking-api/internal/outbox"
	"github.com/amirv/salonbook/services/booking-api/internal/storage"
)

type AppointmentHandler struct {
	pool         *db.Pool
	appointments *storage.AppointmentRepository
	clients      *storage.ClientRepository
	services     *storage.ServiceRepository
	outbox       *outbox.Repository
	logger       *slog.Logger
}

func NewAppointmentHandler(
	pool *db.Pool,
	appointments *storage.AppointmentRepository,
	clients *storage.ClientRepository,
	services *storage.ServiceRepository,
	outboxRepo *outbox.Repository,
	logger *slog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		pool:         pool,
		appointments: appointments,
		clients:      clients,
		services:     services,
		outbox:       outboxRepo,
		logger:       logger,
	}
}

type createAppointmentRequest struct {
	ClientName      string `json:"client_name"`
	ClientPhone     string `json:"client_phone"`
	ClientEmail     string `json:"client_email"`
	ServiceID       int64  `json:"service_id"`
	AppointmentDate string `json:"appointment_date"`
	Notes           string `json:"notes"`
}

// parseAppointmentDate accepts RFC3339 or the datetime-local form the
// booking page submits ("2006-01-02T15:04", interpreted as server-local).
func parseAppointmentDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", s, time.Local)
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var fields []fieldError
	if strings.TrimSpace(req.ClientName) == "" {
		fields = append(fields, bodyField("client_name", "field required"))
	}
	if strings.TrimSpace(req.ClientPhone) == "" {
		fields = append(fields, bodyField("client_phone", "field required"))
	}
	if req.ServiceID <= 0 {
		fields = append(fields, bodyField("service_id", "field required"))
	}
	var when time.Time
	if req.AppointmentDate == "" {
		fields = append(fields, bodyField("appointment_date", "field required"))
	} else {
		var err error
		when, err = parseAppointmentDate(req.AppointmentDate)
		if err != nil {
			fields = append(fields, bodyField("appointment_date", "invalid datetime format"))
		}
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	ctx := r.Context()
	svc, err := h.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "Service not found")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "failed to load service")
		return
	}

	tx, err := h.pool.Begin(ctx)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to start transaction")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	client, err := h.clients.UpsertByPhone(ctx, tx,
		strings.TrimSpace(req.ClientName),
		strings.TrimSpace(req.ClientPhone),
		strings.TrimSpace(req.ClientEmail))
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to save client")
		return
	}

	appt := model.Appointment{
		ClientID:        client.ID,
		ServiceID:       svc.ID,
		AppointmentDate: when,
		Status:          model.StatusPending,
		Notes:           strings.TrimSpace(req.Notes),
	}
	if err := h.appointments.Create(ctx, tx, &appt); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to create appointment")
		return
	}

	if err := h.insertEvent(ctx, tx, outbox.EventAppointmentCreated, appt, client, svc); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to commit transaction")
		return
	}
	h.logger.Info("appointment created", "appointment_id", appt.ID, "service_id", svc.ID)

	writeJSON(w, http.StatusCreated, model.AppointmentDetails{
		Appointment:  appt,
		ClientName:   client.Name,
		ClientPhone:  client.Phone,
		ClientEmail:  client.Email,
		ServiceName:  svc.Name,
		ServicePrice: svc.Price,
	})
}

func (h *AppointmentHandler) ListWithDetails(w http.ResponseWriter, r *http.Request) {
	appts, err := h.appointments.ListFiltered(r.Context(), "", nil, nil)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}
	if appts == nil {
		appts = []model.AppointmentDetails{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentHandler) ListByPhone(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.PathValue("phone"))
	if phone == "" {
		writeValidation(w, []fieldError{queryField("phone", "field required")})
		return
	}
	appts, err := h.appointments.ListByPhone(r.Context(), phone)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}
	if appts == nil {
		appts = []model.AppointmentDetails{}
	}
	writeJSON(w, http.StatusOK, appts)
}

// ListFiltered serves the admin history view. status "all" (or empty) means
// no status filter; dates are YYYY-MM-DD and inclusive on both ends.
func (h *AppointmentHandler) ListFiltered(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := strings.TrimSpace(q.Get("status"))
	if status == "all" {
		status = ""
	}
	if status != "" && !model.ValidStatus(status) {
		writeValidation(w, []fieldError{queryField("status", "invalid status value")})
		return
	}

	var dateFrom, dateTo *time.Time
	if v := q.Get("date_from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeValidation(w, []fieldError{queryField("date_from", "invalid date format")})
			return
		}
		dateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeValidation(w, []fieldError{queryField("date_to", "invalid date format")})
			return
		}
		dateTo = &t
	}

	appts, err := h.appointments.ListFiltered(r.Context(), status, dateFrom, dateTo)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}
	if appts == nil {
		appts = []model.AppointmentDetails{}
	}
	writeJSON(w, http.StatusOK, appts)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an appointment through the status state machine.
// Completing an appointment records its revenue in the same transaction.
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeValidation(w, []fieldError{{Loc: []any{"path", "id"}, Msg: "value is not a valid integer"}})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !model.ValidStatus(req.Status) {
		writeValidation(w, []fieldError{bodyField("status", "invalid status value")})
		return
	}

	ctx := r.Context()
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to start transaction")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.appointments.GetForUpdate(ctx, tx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "Appointment not found")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "failed to load appointment")
		return
	}

	if !model.CanTransition(appt.Status, req.Status) {
		writeDetail(w, http.StatusConflict,
			fmt.Sprintf("Cannot change status from %s to %s", appt.Status, req.Status))
		return
	}

	if err := h.appointments.UpdateStatus(ctx, tx, id, req.Status); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to update appointment")
		return
	}
	appt.Status = req.Status

	svc, err := h.services.GetByID(ctx, appt.ServiceID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to load service")
		return
	}
	if req.Status == model.StatusCompleted {
		if err := h.appointments.InsertRevenue(ctx, tx, appt.ID, svc.Price, appt.AppointmentDate); err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to record revenue")
			return
		}
	}

	eventType := outbox.EventTypeForStatus(req.Status)
	if eventType != "" {
		if err := h.insertStatusEvent(ctx, tx, eventType, appt); err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to write outbox event")
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to commit transaction")
		return
	}
	h.logger.Info("appointment status updated", "appointment_id", id, "status", req.Status)

	details, err := h.appointments.GetDetails(ctx, id)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to load appointment")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *AppointmentHandler) insertEvent(ctx context.Context, tx pgx.Tx, eventType string, appt model.Appointment, client model.Client, svc model.Service) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id":   appt.ID,
		"appointment_date": appt.AppointmentDate.Format(time.RFC3339),
		"status":           appt.Status,
		"client_name":      client.Name,
		"client_phone":     client.Phone,
		"client_email":     client.Email,
		"service_name":     svc.Name,
	})
	if err != nil {
		return err
	}
	return h.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   strconv.FormatInt(appt.ID, 10),
		EventType:     eventType,
		Payload:       payload,
	})
}

func (h *AppointmentHandler) insertStatusEvent(ctx context.Context, tx pgx.Tx, eventType string, appt model.Appointment) error {
	details, err := h.appointments.GetDetails(ctx, appt.ID)
	if err != nil {
		return err
	}
	return h.insertEvent(ctx, tx, eventType,
		appt,
		model.Client{Name: details.ClientName, Phone: details.ClientPhone, Email: details.ClientEmail},
		model.Service{Name: details.ServiceName, Price: details.ServicePrice})
}
