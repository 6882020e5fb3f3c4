package views

import (
	"time"

	"github.com/amirv/salonbook/services/frontend/internal/apiclient"
)

// DateGroup is one calendar day of appointments, rendered as a card group.
type DateGroup struct {
	Date         time.Time
	Appointments []apiclient.Appointment
}

// GroupByDate buckets appointments by calendar date in loc, newest date
// first. Input order is preserved within each group, and every appointment
// lands in exactly one group.
func GroupByDate(appts []apiclient.Appointment, loc *time.Location) []DateGroup {
	if loc == nil {
		loc = time.Local
	}
	index := make(map[time.Time]int)
	var groups []DateGroup
	for _, a := range appts {
		local := a.AppointmentDate.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DateGroup{Date: day})
		}
		groups[i].Appointments = append(groups[i].Appointments, a)
	}
	// Insertion order follows the input; sort groups by date, newest first.
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && groups[j].Date.After(groups[j-1].Date); j-- {
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}
	return groups
}

// DefaultAppointmentTime is the booking form's initial slot: tomorrow at
// 10:00 in now's location.
func DefaultAppointmentTime(now time.Time) time.Time {
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 10, 0, 0, 0, now.Location())
}

// MinAppointmentTime is the earliest slot the form accepts.
func MinAppointmentTime(now time.Time) time.Time {
	return now
}

// StatusLabel maps an appointment status to its display text.
func StatusLabel(status string) string {
	switch status {
	case "pending":
		return "Pending"
	case "confirmed":
		return "Confirmed"
	case "completed":
		return "Completed"
	case "cancelled":
		return "Cancelled"
	}
	return status
}

// StatusClass maps an appointment status to its badge CSS class.
func StatusClass(status string) string {
	switch status {
	case "pending", "confirmed", "completed", "cancelled":
		return "status-" + status
	}
	return "status-unknown"
}
