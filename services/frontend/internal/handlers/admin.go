package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amirv/salonbook/services/frontend/internal/apiclient"
	"github.com/amirv/salonbook/services/frontend/internal/views"
)

type dashboardData struct {
	Pending       []apiclient.Appointment
	Appointments  []views.DateGroup
	ApptsError    string
	Clients       []apiclient.ClientRecord
	ClientsError  string
	Services      []apiclient.Service
	ServicesError string
	Stats         []views.StatCard
	StatsError    string
	Settings      apiclient.Settings
	SettingsError string
}

// Dashboard fires the five panel fetches in parallel. Each panel fails on
// its own: one broken endpoint never blanks the rest of the page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	st, _ := stateFrom(r.Context())
	ctx := r.Context()
	token := st.sess.Token

	var (
		data                                                     dashboardData
		appts                                                    []apiclient.Appointment
		stats                                                    apiclient.Statistics
		apptsErr, clientsErr, servicesErr, statsErr, settingsErr error
	)

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		appts, apptsErr = h.api.AppointmentsWithDetails(ctx, token)
	}()
	go func() {
		defer wg.Done()
		data.Clients, clientsErr = h.api.Clients(ctx, token)
	}()
	go func() {
		defer wg.Done()
		data.Services, servicesErr = h.api.Services(ctx)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = h.api.Statistics(ctx, token)
	}()
	go func() {
		defer wg.Done()
		data.Settings, settingsErr = h.api.AdminSettings(ctx, token)
	}()
	wg.Wait()

	// A stale token fails every panel the same way; treat the first 401 as
	// a logout.
	for _, err := range []error{apptsErr, clientsErr, servicesErr, statsErr, settingsErr} {
		if err != nil && h.handleAPIError(w, r, err) {
			return
		}
	}

	if apptsErr != nil {
		data.ApptsError = errorMessage(apptsErr)
	} else {
		for _, a := range appts {
			if a.Status == "pending" {
				data.Pending = append(data.Pending, a)
			}
		}
		data.Appointments = views.GroupByDate(appts, time.Local)
	}
	if clientsErr != nil {
		data.ClientsError = errorMessage(clientsErr)
	}
	if servicesErr != nil {
		data.ServicesError = errorMessage(servicesErr)
	}
	if statsErr != nil {
		data.StatsError = errorMessage(statsErr)
	} else {
		data.Stats = views.StatCards(stats)
	}
	if settingsErr != nil {
		data.SettingsError = errorMessage(settingsErr)
	}

	h.renderPage(w, r, "admin.html", "Admin dashboard", data)
}

type historyData struct {
	Status   string
	DateFrom string
	DateTo   string
	Groups   []views.DateGroup
	Error    string
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	st, _ := stateFrom(r.Context())
	q := r.URL.Query()
	data := historyData{
		Status:   q.Get("status"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}
	if data.Status == "" {
		data.Status = "all"
	}

	appts, err := h.api.AllAppointments(r.Context(), st.sess.Token, data.Status, data.DateFrom, data.DateTo)
	if err != nil {
		if h.handleAPIError(w, r, err) {
			return
		}
		data.Error = errorMessage(err)
	} else {
		data.Groups = views.GroupByDate(appts, time.Local)
	}

	h.renderPage(w, r, "history.html", "Appointment history", data)
}

// UpdateAppointmentStatus confirms, rejects or completes an appointment,
// then returns to the dashboard, which re-fetches appointments and
// statistics.
func (h *Handler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	st, _ := stateFrom(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.redirectWithFlash(w, r, st.sid, "/admin", "error", "Invalid appointment id")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, st.sid, "/admin", "error", "Invalid form submission")
		return
	}
	status := r.PostFormValue("status")
	switch status {
	case "confirmed", "cancelled", "completed":
	default:
		h.redirectWithFlash(w, r, st.sid, "/admin", "error", "Invalid status value")
		return
	}

	if _, err := h.api.UpdateAppointmentStatus(r.Context(), st.sess.Token, id, status); err != nil {
		if h.handleAPIError(w, r, err) {
			return
		}
		h.redirectWithFlash(w, r, st.sid, "/admin", "error", errorMessage(err))
		return
	}
	h.redirectWithFlash(w, r, st.sid, "/admin", "success", "Appointment "+views.StatusLabel(status))
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	st, _ := stateFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, st.sid, "/admin", "error", "Invalid form submission")
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	price, priceErr := strconv.ParseFloat(r.PostFormValue("price"), 64)
	duration, durErr := strconv.Atoi(r.PostFormValue("duration"))
	description := strings.TrimSpace(r.PostFormValue("description"))

	if name == "" || priceErr != nil || price < 0 || durErr != nil || duration <= 0 {
		h.redirectWithFlash(w, r, st.sid, "/admin", "error", "Please provide a name, a non-negative price and a positive duration")
		return
	}

	_, err := h.api.CreateService(r.Context(), st.sess.Token, apiclient.CreateServiceRequest{
		Name:        name,
		Price:       price,
		Duration:    duration,
		Description: description,
	})
	if err != nil {
		if h.handleAPIError(w, r, err) {
			return
		}
		h.redirectWithFlash(w, r, st.sid, "/admin", "error", errorMessage(err))
		return
	}
	h.redirectWithFlash(w, r, st.sid, "/admin", "success", "Service created")
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	st, _ := stateFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, st.sid, "/admin", "error", "Invalid form submission")
		return
	}

	form := views.SettingsForm{
		BusinessName:    r.PostFormValue("business_name"),
		BusinessAddress: r.PostFormValue("business_address"),
		BusinessPhone:   r.PostFormValue("business_phone"),
		BusinessEmail:   r.PostFormValue("business_email"),
		WorkingHours:    r.PostFormValue("working_hours"),
		ReminderHours:   r.PostFormValue("notification_reminder_hours"),
	}

	if _, err := h.api.UpdateSettings(r.Context(), st.sess.Token, form.ToSettings()); err != nil {
		if h.handleAPIError(w, r, err) {
			return
		}
		h.redirectWithFlash(w, r, st.sid, "/admin", "error", errorMessage(err))
		return
	}
	h.redirectWithFlash(w, r, st.sid, "/admin", "success", "Settings saved")
}
