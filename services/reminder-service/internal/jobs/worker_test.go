package jobs

import (
	"strings"
	"testing"
	"time"
)

func TestReminderMessage(t *testing.T) {
	job := Job{
		AppointmentID:   7,
		ClientName:      "Masha",
		ServiceName:     "Haircut",
		AppointmentDate: time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local),
	}
	subject, body := ReminderMessage(job)

	if !strings.Contains(subject, "Haircut") {
		t.Fatalf("subject missing service name: %q", subject)
	}
	if !strings.Contains(body, "Masha") || !strings.Contains(body, "Haircut") {
		t.Fatalf("body missing client or service: %q", body)
	}
	if !strings.Contains(body, "10:00") {
		t.Fatalf("body missing appointment time: %q", body)
	}
}
