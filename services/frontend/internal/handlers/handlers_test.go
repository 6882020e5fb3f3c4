package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirv/salonbook/services/frontend/internal/apiclient"
	"github.com/amirv/salonbook/services/frontend/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	mux   *http.ServeMux
	store *session.MemoryStore
	sid   string
}

func newFixture(t *testing.T, backend http.Handler, user session.User) *fixture {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore(time.Hour)
	h, err := New(apiclient.New(srv.URL), store, testLogger(), false)
	if err != nil {
		t.Fatalf("handler init: %v", err)
	}
	mux := http.NewServeMux()
	h.Routes(mux)

	sid := session.NewSID()
	if err := store.Put(context.Background(), sid, session.Session{Token: "tok", User: user}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return &fixture{mux: mux, store: store, sid: sid}
}

func (f *fixture) request(t *testing.T, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.AddCookie(&http.Cookie{Name: "sid", Value: f.sid})
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func flashOf(t *testing.T, f *fixture) *session.Flash {
	t.Helper()
	sess, err := f.store.Get(context.Background(), f.sid)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return sess.Flash
}

func TestBookInvalidPhoneNeverHitsBackend(t *testing.T) {
	var calls int32
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	f := newFixture(t, backend, session.User{Username: "masha"})

	rec := f.request(t, http.MethodPost, "/book",
		"client_name=Masha&client_phone=12345&service_id=1&appointment_date=2026-09-01T10:00")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want redirect", rec.Code)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("backend calls = %d, want 0 for invalid phone", n)
	}
	flash := flashOf(t, f)
	if flash == nil || flash.Kind != "error" {
		t.Fatalf("expected error flash, got %+v", flash)
	}
}

func TestBookSuccessResetsForm(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/appointments/" || r.Method != http.MethodPost {
			t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1, "status": "pending", "appointment_date": "2026-09-01T10:00:00Z"}`))
	})
	f := newFixture(t, backend, session.User{Username: "masha"})

	rec := f.request(t, http.MethodPost, "/book",
		"client_name=Masha&client_phone=%2B79001234567&service_id=1&appointment_date=2026-09-01T10:00")

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("want redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	flash := flashOf(t, f)
	if flash == nil || flash.Kind != "success" {
		t.Fatalf("expected success flash, got %+v", flash)
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	})
	f := newFixture(t, backend, session.User{Username: "admin", IsAdmin: true})

	rec := f.request(t, http.MethodGet, "/admin", "")

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("want redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, err := f.store.Get(context.Background(), f.sid); err == nil {
		t.Fatal("session should be destroyed after a 401")
	}
}

func TestStatusUpdateNotFoundShowsServerDetail(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Appointment not found"}`))
	})
	f := newFixture(t, backend, session.User{Username: "admin", IsAdmin: true})

	rec := f.request(t, http.MethodPost, "/admin/appointments/5/status", "status=confirmed")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want redirect", rec.Code)
	}
	flash := flashOf(t, f)
	if flash == nil || flash.Message != "Appointment not found" {
		t.Fatalf("flash should carry the server detail verbatim, got %+v", flash)
	}
}

func TestDashboardSurvivesStatisticsFailure(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/statistics/":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail": "stats exploded"}`))
		case "/appointments-with-details/":
			_, _ = w.Write([]byte(`[{"id": 1, "status": "pending", "client_name": "Masha", "client_phone": "+79001234567", "service_name": "Haircut", "appointment_date": "2026-09-01T10:00:00Z"}]`))
		case "/clients/":
			_, _ = w.Write([]byte(`[{"id": 1, "name": "Masha", "phone": "+79001234567"}]`))
		case "/services/":
			_, _ = w.Write([]byte(`[{"id": 1, "name": "Haircut", "price": 30, "duration": 45}]`))
		case "/admin/settings/":
			_, _ = w.Write([]byte(`{"business_name": "SalonBook", "notification_reminder_hours": 24}`))
		default:
			t.Errorf("unexpected backend path %s", r.URL.Path)
		}
	})
	f := newFixture(t, backend, session.User{Username: "admin", IsAdmin: true})

	rec := f.request(t, http.MethodGet, "/admin", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "stats exploded") {
		t.Fatal("statistics panel should show its own error")
	}
	for _, want := range []string{"Masha", "Haircut", "SalonBook"} {
		if !strings.Contains(body, want) {
			t.Fatalf("panel content %q missing despite statistics failure", want)
		}
	}
}

func TestNonAdminBouncedFromAdmin(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend should not be called, got %s", r.URL.Path)
	})
	f := newFixture(t, backend, session.User{Username: "masha", IsAdmin: false})

	rec := f.request(t, http.MethodGet, "/admin", "")

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("want redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	flash := flashOf(t, f)
	if flash == nil || flash.Kind != "error" {
		t.Fatalf("expected error flash, got %+v", flash)
	}
}

func TestCheckAuthRedirectsWithoutSession(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	f := newFixture(t, backend, session.User{Username: "masha"})

	req := httptest.NewRequest(http.MethodGet, "/", nil) // no cookie
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("want redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestMyAppointmentsGrouping(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/client-appointments/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"id": 1, "status": "confirmed", "client_name": "Masha", "service_name": "Haircut", "appointment_date": "2026-09-02T10:00:00Z"},
			{"id": 2, "status": "completed", "client_name": "Masha", "service_name": "Manicure", "appointment_date": "2026-09-01T12:00:00Z"}
		]`))
	})
	f := newFixture(t, backend, session.User{Username: "masha"})

	rec := f.request(t, http.MethodPost, "/my-appointments", "phone=%2B79001234567")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "2 appointment(s) found") {
		t.Fatal("missing count notification")
	}
	if !strings.Contains(body, "Haircut") || !strings.Contains(body, "Manicure") {
		t.Fatal("appointments missing from page")
	}
}
