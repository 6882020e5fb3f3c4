package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/amirv/salonbook/libs/db"
	"github.com/amirv/salonbook/services/booking-api/internal/model"
)

type ClientRepository struct {
	pool *db.Pool
}

func NewClientRepository(pool *db.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// UpsertByPhone finds the client with the given phone number, refreshing
// name and email when non-empty values are supplied, or creates a new one.
// Phone is the natural key for walk-in bookings.
func (r *ClientRepository) UpsertByPhone(ctx context.Context, tx pgx.Tx, name, phone, email string) (model.Client, error) {
	var c model.Client
	err := tx.QueryRow(ctx, `
		SELECT id, name, phone, COALESCE(email, ''), COALESCE(notes, ''), created_at
		FROM clients
		WHERE phone = $1
		FOR UPDATE
	`, phone).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt)
	if err == nil {
		if (name != "" && name != c.Name) || (email != "" && email != c.Email) {
			if name == "" {
				name = c.Name
			}
			if email == "" {
				email = c.Email
			}
			if _, err := tx.Exec(ctx, `
				UPDATE clients SET name = $2, email = $3 WHERE id = $1
			`, c.ID, name, email); err != nil {
				return model.Client{}, err
			}
			c.Name = name
			c.Email = email
		}
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Client{}, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO clients (name, phone, email)
		VALUES ($1, $2, $3)
		RETURNING id, name, phone, COALESCE(email, ''), COALESCE(notes, ''), created_at
	`, name, phone, email).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt)
	if err != nil {
		return model.Client{}, err
	}
	return c, nil
}

func (r *ClientRepository) List(ctx context.Context) ([]model.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, COALESCE(email, ''), COALESCE(notes, ''), created_at
		FROM clients
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return clients, nil
}
