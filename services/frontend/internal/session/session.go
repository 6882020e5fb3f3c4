package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no session exists for a given id.
var ErrNotFound = errors.New("session not found")

type User struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Session is the server-side login state keyed by the sid cookie.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
	Flash *Flash `json:"flash,omitempty"`
}

// Flash is a one-shot notification rendered on the next page load.
type Flash struct {
	Kind    string `json:"kind"` // success, error, info
	Message string `json:"message"`
}

// Store persists sessions. Implementations: Redis for deployments,
// in-memory for dev and tests.
type Store interface {
	Get(ctx context.Context, sid string) (Session, error)
	Put(ctx context.Context, sid string, s Session) error
	Delete(ctx context.Context, sid string) error
}
