package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/amirv/salonbook/libs/db"
	"github.com/amirv/salonbook/services/booking-api/internal/model"
)

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, username, email, hashedPassword string, isAdmin bool) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, hashed_password, is_active, is_admin)
		VALUES ($1, $2, $3, true, $4)
		RETURNING id, username, email, hashed_password, is_active, is_admin, created_at
	`, username, email, hashedPassword, isAdmin).Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.IsActive, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, email, hashed_password, is_active, is_admin, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.IsActive, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// EnsureAdmin seeds the admin account on startup if it does not exist yet.
func (r *UserRepository) EnsureAdmin(ctx context.Context, username, email, hashedPassword string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (username, email, hashed_password, is_active, is_admin)
		VALUES ($1, $2, $3, true, true)
		ON CONFLICT (username) DO NOTHING
	`, username, email, hashedPassword)
	return err
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
