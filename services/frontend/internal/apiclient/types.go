package apiclient

import "time"

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

type Service struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
	Description string  `json:"description"`
	IsActive    bool    `json:"is_active"`
}

// ClientRecord is one row of the salon's client roster.
type ClientRecord struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// Appointment is the joined appointment row every list endpoint returns.
type Appointment struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"client_id"`
	ServiceID       int64     `json:"service_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes"`
	ClientName      string    `json:"client_name"`
	ClientPhone     string    `json:"client_phone"`
	ClientEmail     string    `json:"client_email"`
	ServiceName     string    `json:"service_name"`
	ServicePrice    float64   `json:"service_price"`
}

type Settings struct {
	BusinessName              string `json:"business_name"`
	BusinessAddress           string `json:"business_address"`
	BusinessPhone             string `json:"business_phone"`
	BusinessEmail             string `json:"business_email"`
	WorkingHours              string `json:"working_hours"`
	NotificationReminderHours int    `json:"notification_reminder_hours"`
}

type PopularService struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type Statistics struct {
	TotalAppointments     int64            `json:"total_appointments"`
	CompletedAppointments int64            `json:"completed_appointments"`
	PendingAppointments   int64            `json:"pending_appointments"`
	TotalRevenue          float64          `json:"total_revenue"`
	MonthlyRevenue        float64          `json:"monthly_revenue"`
	PopularServices       []PopularService `json:"popular_services"`
}

// CreateAppointmentRequest is the public booking payload.
type CreateAppointmentRequest struct {
	ClientName      string `json:"client_name"`
	ClientPhone     string `json:"client_phone"`
	ClientEmail     string `json:"client_email,omitempty"`
	ServiceID       int64  `json:"service_id"`
	AppointmentDate string `json:"appointment_date"`
	Notes           string `json:"notes,omitempty"`
}

type CreateServiceRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
	Description string  `json:"description"`
}
