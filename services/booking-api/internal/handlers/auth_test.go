package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirv/salonbook/libs/auth"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, sub string, isAdmin bool) string {
	t.Helper()
	now := time.Now()
	token, err := auth.SignHS256(auth.Claims{
		Sub:     sub,
		IsAdmin: isAdmin,
		Iat:     now.Unix(),
		Exp:     now.Add(time.Hour).Unix(),
	}, testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Detail
}

func TestRequireAuth(t *testing.T) {
	h := NewAuthHandler(testSecret, time.Hour, nil)
	var gotSub string
	next := h.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())
		gotSub = claims.Sub
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/me/", nil)
	rec := httptest.NewRecorder()
	next(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: got %d, want 401", rec.Code)
	}
	if detailOf(t, rec) != "Not authenticated" {
		t.Fatalf("unexpected detail: %q", detailOf(t, rec))
	}

	req = httptest.NewRequest(http.MethodGet, "/users/me/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	next(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/me/", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "masha", false))
	rec = httptest.NewRecorder()
	next(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: got %d, want 200", rec.Code)
	}
	if gotSub != "masha" {
		t.Fatalf("claims sub = %q, want masha", gotSub)
	}
}

func TestRequireAdmin(t *testing.T) {
	h := NewAuthHandler(testSecret, time.Hour, nil)
	next := h.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/statistics/", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "masha", false))
	rec := httptest.NewRecorder()
	next(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: got %d, want 403", rec.Code)
	}
	if detailOf(t, rec) != "Not enough permissions" {
		t.Fatalf("unexpected detail: %q", detailOf(t, rec))
	}

	req = httptest.NewRequest(http.MethodGet, "/statistics/", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "admin", true))
	rec = httptest.NewRecorder()
	next(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: got %d, want 200", rec.Code)
	}
}
