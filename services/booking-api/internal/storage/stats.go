package storage

import (
	"context"
	"time"

	"github.com/amirv/salonbook/libs/db"
	"github.com/amirv/salonbook/services/booking-api/internal/model"
)

type StatsRepository struct {
	pool *db.Pool
}

func NewStatsRepository(pool *db.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Collect gathers the dashboard aggregates. Monthly revenue counts rows
// dated on or after the first day of the current month.
func (r *StatsRepository) Collect(ctx context.Context, now time.Time) (model.Statistics, error) {
	var stats model.Statistics

	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
			count(*) FILTER (WHERE status = 'completed'),
			count(*) FILTER (WHERE status = 'pending')
		FROM appointments
	`).Scan(&stats.TotalAppointments, &stats.CompletedAppointments, &stats.PendingAppointments)
	if err != nil {
		return model.Statistics{}, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(amount), 0),
			COALESCE(sum(amount) FILTER (WHERE date >= $1), 0)
		FROM revenues
	`, monthStart).Scan(&stats.TotalRevenue, &stats.MonthlyRevenue)
	if err != nil {
		return model.Statistics{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT s.name, count(a.id)
		FROM services s
		JOIN appointments a ON a.service_id = s.id
		GROUP BY s.name
		ORDER BY count(a.id) DESC, s.name
		LIMIT 5
	`)
	if err != nil {
		return model.Statistics{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var p model.PopularService
		if err := rows.Scan(&p.Name, &p.Count); err != nil {
			return model.Statistics{}, err
		}
		stats.PopularServices = append(stats.PopularServices, p)
	}
	if rows.Err() != nil {
		return model.Statistics{}, rows.Err()
	}
	if stats.PopularServices == nil {
		stats.PopularServices = []model.PopularService{}
	}
	return stats, nil
}
