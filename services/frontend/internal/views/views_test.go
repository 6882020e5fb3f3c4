package views

import (
	"testing"
	"time"

	"github.com/amirv/salonbook/services/frontend/internal/apiclient"
)

func TestValidPhone(t *testing.T) {
	valid := []string{
		"+7 (900) 123-45-67",
		"89001234567",
		"  8 900 123 45 67  ",
		"(495) 123-45-67",
	}
	for _, s := range valid {
		if !ValidPhone(s) {
			t.Errorf("ValidPhone(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"12345",
		"123-45-67", // too short once stripped
		"phone: 89001234567",
		"8900123456a",
		"++79001234567",
	}
	for _, s := range invalid {
		if ValidPhone(s) {
			t.Errorf("ValidPhone(%q) = true, want false", s)
		}
	}
}

func appt(id int64, date time.Time) apiclient.Appointment {
	return apiclient.Appointment{ID: id, AppointmentDate: date}
}

func TestGroupByDate(t *testing.T) {
	loc := time.UTC
	day1 := time.Date(2026, 8, 25, 9, 0, 0, 0, loc)
	day2 := time.Date(2026, 8, 26, 14, 0, 0, 0, loc)

	input := []apiclient.Appointment{
		appt(1, day2),
		appt(2, day1),
		appt(3, day2.Add(2*time.Hour)),
		appt(4, day1.Add(time.Hour)),
	}
	groups := GroupByDate(input, loc)

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if !groups[0].Date.After(groups[1].Date) {
		t.Fatalf("groups not descending: %v then %v", groups[0].Date, groups[1].Date)
	}

	// Every appointment appears exactly once.
	total := 0
	for _, g := range groups {
		total += len(g.Appointments)
	}
	if total != len(input) {
		t.Fatalf("total grouped = %d, want %d", total, len(input))
	}

	// Input order is preserved inside each group.
	if groups[0].Appointments[0].ID != 1 || groups[0].Appointments[1].ID != 3 {
		t.Fatalf("newest group order: %+v", groups[0].Appointments)
	}
	if groups[1].Appointments[0].ID != 2 || groups[1].Appointments[1].ID != 4 {
		t.Fatalf("older group order: %+v", groups[1].Appointments)
	}
}

func TestGroupByDateEmpty(t *testing.T) {
	if groups := GroupByDate(nil, time.UTC); len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}

func TestDefaultAppointmentTime(t *testing.T) {
	now := time.Date(2026, 8, 27, 18, 45, 12, 0, time.UTC)
	got := DefaultAppointmentTime(now)
	want := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !MinAppointmentTime(now).Equal(now) {
		t.Fatal("min time should equal now")
	}
}

func TestSettingsFormDefaults(t *testing.T) {
	s := SettingsForm{BusinessName: " Salon ", ReminderHours: ""}.ToSettings()
	if s.NotificationReminderHours != 24 {
		t.Fatalf("reminder hours = %d, want 24", s.NotificationReminderHours)
	}
	if s.BusinessName != "Salon" {
		t.Fatalf("business name = %q", s.BusinessName)
	}

	s = SettingsForm{ReminderHours: "48"}.ToSettings()
	if s.NotificationReminderHours != 48 {
		t.Fatalf("reminder hours = %d, want 48", s.NotificationReminderHours)
	}

	s = SettingsForm{ReminderHours: "-3"}.ToSettings()
	if s.NotificationReminderHours != 24 {
		t.Fatalf("negative input: got %d, want 24", s.NotificationReminderHours)
	}
}

func TestStatusLabels(t *testing.T) {
	if StatusLabel("pending") != "Pending" || StatusClass("pending") != "status-pending" {
		t.Fatal("pending label/class wrong")
	}
	if StatusClass("bogus") != "status-unknown" {
		t.Fatal("unknown status should map to status-unknown")
	}
}
