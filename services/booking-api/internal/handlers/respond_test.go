package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWriteValidationShape(t *testing.T) {
	rec := httptest.NewRecorder()
	writeValidation(rec, []fieldError{
		bodyField("client_phone", "field required"),
		queryField("status", "invalid status value"),
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body struct {
		Detail []struct {
			Loc []any  `json:"loc"`
			Msg string `json:"msg"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Detail) != 2 {
		t.Fatalf("detail entries = %d, want 2", len(body.Detail))
	}
	if body.Detail[0].Loc[0] != "body" || body.Detail[0].Loc[1] != "client_phone" {
		t.Fatalf("unexpected loc: %v", body.Detail[0].Loc)
	}
	if body.Detail[1].Msg != "invalid status value" {
		t.Fatalf("unexpected msg: %q", body.Detail[1].Msg)
	}
}

func TestParseAppointmentDate(t *testing.T) {
	got, err := parseAppointmentDate("2026-09-01T10:00:00Z")
	if err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if !got.Equal(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 parsed to %v", got)
	}

	got, err = parseAppointmentDate("2026-09-01T10:00")
	if err != nil {
		t.Fatalf("datetime-local: %v", err)
	}
	if got.Hour() != 10 || got.Day() != 1 {
		t.Fatalf("datetime-local parsed to %v", got)
	}

	if _, err := parseAppointmentDate("tomorrow"); err == nil {
		t.Fatal("expected error for junk input")
	}
}
