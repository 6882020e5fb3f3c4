package model

import "time"

// Appointment statuses. Transitions are enforced server-side: a pending
// appointment can be confirmed or cancelled, a confirmed one completed or
// cancelled. completed and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Duration    int       `json:"duration"` // minutes
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Appointment struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"client_id"`
	ServiceID       int64     `json:"service_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// AppointmentDetails is the appointment row joined with its client and
// service, the shape every admin/list endpoint returns.
type AppointmentDetails struct {
	Appointment
	ClientName   string  `json:"client_name"`
	ClientPhone  string  `json:"client_phone"`
	ClientEmail  string  `json:"client_email,omitempty"`
	ServiceName  string  `json:"service_name"`
	ServicePrice float64 `json:"service_price"`
}

// Settings is the singleton business-settings record.
type Settings struct {
	ID                        int64  `json:"id"`
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
