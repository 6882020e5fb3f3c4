package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "string detail verbatim",
			status: 404,
			body:   `{"detail": "Appointment not found"}`,
			want:   "Appointment not found",
		},
		{
			name:   "validation array",
			status: 422,
			body:   `{"detail": [{"loc": ["body", "client_phone"], "msg": "field required"}, {"loc": ["body", "service_id"], "msg": "field required"}]}`,
			want:   "client_phone: field required, service_id: field required",
		},
		{
			name:   "object detail serialized",
			status: 400,
			body:   `{"detail": {"code":"conflict","slot":"taken"}}`,
			want:   `{"code":"conflict","slot":"taken"}`,
		},
		{
			name:   "no detail key",
			status: 502,
			body:   `{"error": "bad gateway"}`,
			want:   "HTTP Error: 502",
		},
		{
			name:   "unparsable body",
			status: 500,
			body:   `<html>Internal Server Error</html>`,
			want:   "HTTP Error: 500",
		},
		{
			name:   "empty body",
			status: 503,
			body:   "",
			want:   "HTTP Error: 503",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeDetail(tt.status, []byte(tt.body)); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Appointment not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.UpdateAppointmentStatus(context.Background(), "tok", 5, "confirmed")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Detail != "Appointment not found" {
		t.Fatalf("got %+v", apiErr)
	}
}

func TestClientUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Statistics(context.Background(), "stale"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := c.Clients(context.Background(), "stale"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized from every endpoint, got %v", err)
	}
}

func TestLoginFallbackProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			if err := r.ParseForm(); err != nil || r.PostFormValue("username") != "masha" {
				t.Errorf("unexpected token form: %v", r.PostForm)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"access_token": "tok-abc", "token_type": "bearer",
			})
		case "/users/me/":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail": "boom"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	token, user, err := c.Login(context.Background(), "masha", "pass123")
	if err != nil {
		t.Fatalf("login should survive profile failure: %v", err)
	}
	if token != "tok-abc" {
		t.Fatalf("token = %q", token)
	}
	if user.Username != "masha" || user.IsAdmin {
		t.Fatalf("fallback user = %+v", user)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Incorrect username or password"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, _, err := c.Login(context.Background(), "masha", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Detail != "Incorrect username or password" {
		t.Fatalf("detail = %q", apiErr.Detail)
	}
}

func TestAllAppointmentsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	if _, err := c.AllAppointments(ctx, "tok", "all", "", ""); err != nil {
		t.Fatal(err)
	}
	if gotQuery != "" {
		t.Fatalf("status=all should send no params, got %q", gotQuery)
	}

	if _, err := c.AllAppointments(ctx, "tok", "pending", "2026-08-01", ""); err != nil {
		t.Fatal(err)
	}
	if gotQuery != "date_from=2026-08-01&status=pending" {
		t.Fatalf("query = %q", gotQuery)
	}
}
