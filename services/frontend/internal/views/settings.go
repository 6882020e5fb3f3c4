package views

import (
	"strconv"
	"strings"

	"github.com/amirv/salonbook/services/frontend/internal/apiclient"
)

// SettingsForm holds the admin settings form fields as submitted.
type SettingsForm struct {
	BusinessName    string
	BusinessAddress string
	BusinessPhone   string
	BusinessEmail   string
	WorkingHours    string
	ReminderHours   string
}

// ToSettings parses the form into the API payload. Reminder hours defaults
// to 24 when the field is empty or not a positive integer.
func (f SettingsForm) ToSettings() apiclient.Settings {
	hours := 24
	if v := strings.TrimSpace(f.ReminderHours); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}
	return apiclient.Settings{
		BusinessName:              strings.TrimSpace(f.BusinessName),
		BusinessAddress:           strings.TrimSpace(f.BusinessAddress),
		BusinessPhone:             strings.TrimSpace(f.BusinessPhone),
		BusinessEmail:             strings.TrimSpace(f.BusinessEmail),
		WorkingHours:              strings.TrimSpace(f.WorkingHours),
		NotificationReminderHours: hours,
	}
}

// StatCard is one dashboard statistics tile.
type StatCard struct {
	Label string
	Value string
}

// StatCards flattens the statistics payload into dashboard tiles.
func StatCards(s apiclient.Statistics) []StatCard {
	return []StatCard{
		{Label: "Total appointments", Value: strconv.FormatInt(s.TotalAppointments, 10)},
		{Label: "Completed", Value: strconv.FormatInt(s.CompletedAppointments, 10)},
		{Label: "Pending", Value: strconv.FormatInt(s.PendingAppointments, 10)},
		{Label: "Total revenue", Value: formatMoney(s.TotalRevenue)},
		{Label: "Revenue this month", Value: formatMoney(s.MonthlyRevenue)},
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
