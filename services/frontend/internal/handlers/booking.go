package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amirv/salonbook/services/frontend/internal/apiclient"
	"github.com/amirv/salonbook/services/frontend/internal/session"
	"github.com/amirv/salonbook/services/frontend/internal/views"
)

type bookingPageData struct {
	Services      []apiclient.Service
	ServicesError string
	Settings      apiclient.Settings
	DefaultTime   string
	MinTime       string
}

const datetimeLocal = "2006-01-02T15:04"

func (h *Handler) BookingPage(w http.ResponseWriter, r *http.Request) {
	data := bookingPageData{
		DefaultTime: views.DefaultAppointmentTime(time.Now()).Format(datetimeLocal),
		MinTime:     views.MinAppointmentTime(time.Now()).Format(datetimeLocal),
	}

	services, err := h.api.Services(r.Context())
	if err != nil {
		if h.handleAPIError(w, r, err) {
			return
		}
		data.ServicesError = errorMessage(err)
	}
	data.Services = services

	// The contact panel is decoration: a settings failure renders empty
	// defaults rather than an error.
	if settings, err := h.api.PublicSettings(r.Context()); err == nil {
		data.Settings = settings
	}

	h.renderPage(w, r, "booking.html", "Book an appointment", data)
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	st, _ := stateFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, st.sid, "/", "error", "Invalid form submission")
		return
	}

	name := strings.TrimSpace(r.PostFormValue("client_name"))
	phone := strings.TrimSpace(r.PostFormValue("client_phone"))
	email := strings.TrimSpace(r.PostFormValue("client_email"))
	serviceID, _ := strconv.ParseInt(r.PostFormValue("service_id"), 10, 64)
	when := strings.TrimSpace(r.PostFormValue("appointment_date"))
	notes := strings.TrimSpace(r.PostFormValue("notes"))

	// Validate before any backend call: an invalid form never leaves the
	// frontend.
	switch {
	case name == "" || phone == "" || serviceID <= 0 || when == "":
		h.redirectWithFlash(w, r, st.sid, "/", "error", "Please fill in name, phone, service and date")
		return
	case !views.ValidPhone(phone):
		h.redirectWithFlash(w, r, st.sid, "/", "error", "Please enter a valid phone number")
		return
	}

	_, err := h.api.CreateAppointment(r.Context(), apiclient.CreateAppointmentRequest{
		ClientName:      name,
		ClientPhone:     phone,
		ClientEmail:     email,
		ServiceID:       serviceID,
		AppointmentDate: when,
		Notes:           notes,
	})
	if err != nil {
		if h.handleAPIError(w, r, err) {
			return
		}
		h.redirectWithFlash(w, r, st.sid, "/", "error", errorMessage(err))
		return
	}

	// Redirecting back to the booking page resets the form to its defaults.
	h.redirectWithFlash(w, r, st.sid, "/", "success", "Appointment booked! We will confirm it shortly.")
}

type myAppointmentsData struct {
	Phone  string
	Groups []views.DateGroup
	Looked bool
}

func (h *Handler) MyAppointmentsPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "my_appointments.html", "My appointments", myAppointmentsData{})
}

func (h *Handler) MyAppointments(w http.ResponseWriter, r *http.Request) {
	st, _ := stateFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, st.sid, "/my-appointments", "error", "Invalid form submission")
		return
	}
	phone := strings.TrimSpace(r.PostFormValue("phone"))
	if !views.ValidPhone(phone) {
		h.redirectWithFlash(w, r, st.sid, "/my-appointments", "error", "Please enter a valid phone number")
		return
	}

	appts, err := h.api.ClientAppointments(r.Context(), phone)
	if err != nil {
		if h.handleAPIError(w, r, err) {
			return
		}
		h.redirectWithFlash(w, r, st.sid, "/my-appointments", "error", errorMessage(err))
		return
	}

	data := myAppointmentsData{
		Phone:  phone,
		Groups: views.GroupByDate(appts, time.Local),
		Looked: true,
	}
	pd := pageData{
		Title:    "My appointments",
		User:     st.sess.User,
		LoggedIn: true,
		Flash:    &session.Flash{Kind: "info", Message: fmt.Sprintf("%d appointment(s) found", len(appts))},
		Data:     data,
	}
	h.render(w, "my_appointments.html", pd)
}
