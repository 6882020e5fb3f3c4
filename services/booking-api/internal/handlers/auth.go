package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/amirv/salonbook/libs/auth"
	"github.com/amirv/salonbook/services/booking-api/internal/model"
	"github.com/amirv/salonbook/services/booking-api/internal/storage"
)

type AuthHandler struct {
	secret   string
	tokenTTL time.Duration
	users    *storage.UserRepository
}

func NewAuthHandler(secret string, tokenTTL time.Duration, users *storage.UserRepository) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &AuthHandler{secret: secret, tokenTTL: tokenTTL, users: users}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token exchanges form-encoded credentials for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form body")
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	var fields []fieldError
	if username == "" {
		fields = append(fields, bodyField("username", "field required"))
	}
	if password == "" {
		fields = append(fields, bodyField("password", "field required"))
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if storage.IsNotFound(err) {
			h.unauthorized(w)
			return
		}
		writeDetail(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		h.unauthorized(w)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *AuthHandler) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form body")
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	var fields []fieldError
	if username == "" {
		fields = append(fields, bodyField("username", "field required"))
	}
	if email == "" {
		fields = append(fields, bodyField("email", "field required"))
	}
	if len(password) < 6 {
		fields = append(fields, bodyField("password", "ensure this value has at least 6 characters"))
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.users.Create(r.Context(), username, email, string(hash), false)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			writeDetail(w, http.StatusBadRequest, "Username already registered")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	user, err := h.users.GetByUsername(r.Context(), claims.Sub)
	if err != nil {
		if storage.IsNotFound(err) {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) issueToken(user model.User) (string, error) {
	now := time.Now()
	return auth.SignHS256(auth.Claims{
		Sub:     user.Username,
		IsAdmin: user.IsAdmin,
		Iat:     now.Unix(),
		Exp:     now.Add(h.tokenTTL).Unix(),
	}, h.secret)
}

type claimsKey struct{}

func claimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return claims, ok
}

// RequireAuth verifies the bearer token and stores its claims on the
// request context.
func (h *AuthHandler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := auth.ParseAndVerifyHS256(token, h.secret)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, *claims)))
	}
}

// RequireAdmin additionally rejects non-admin tokens.
func (h *AuthHandler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())
		if !claims.IsAdmin {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		next(w, r)
	})
}
