package storage

import (
	"context"

	"github.com/amirv/salonbook/libs/db"
	"github.com/amirv/salonbook/services/booking-api/internal/model"
)

type ServiceRepository struct {
	pool *db.Pool
}

func NewServiceRepository(pool *db.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

func (r *ServiceRepository) Create(ctx context.Context, svc model.Service) (model.Service, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO services (name, price, duration, description, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, is_active, created_at
	`, svc.Name, svc.Price, svc.Duration, svc.Description).Scan(&svc.ID, &svc.IsActive, &svc.CreatedAt)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *ServiceRepository) ListActive(ctx context.Context) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, price, duration, COALESCE(description, ''), is_active, created_at
		FROM services
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.Duration, &s.Description, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return services, nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (model.Service, error) {
	var s model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, price, duration, COALESCE(description, ''), is_active, created_at
		FROM services
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Price, &s.Duration, &s.Description, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return model.Service{}, err
	}
	return s, nil
}
