package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/amirv/salonbook/libs/db"
	"github.com/amirv/salonbook/services/booking-api/internal/model"
)

type SettingsRepository struct {
	pool *db.Pool
}

func NewSettingsRepository(pool *db.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

const settingsSelect = `
	SELECT id, COALESCE(business_name, ''), COALESCE(business_address, ''),
		COALESCE(business_phone, ''), COALESCE(business_email, ''),
		COALESCE(working_hours, ''), notification_reminder_hours
	FROM admin_settings
	ORDER BY id
	LIMIT 1
`

// GetOrCreate returns the singleton settings row, inserting the default one
// on first use.
func (r *SettingsRepository) GetOrCreate(ctx context.Context) (model.Settings, error) {
	s, err := r.get(ctx)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Settings{}, err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO admin_settings (notification_reminder_hours)
		SELECT 24
		WHERE NOT EXISTS (SELECT 1 FROM admin_settings)
	`)
	if err != nil {
		return model.Settings{}, err
	}
	return r.get(ctx)
}

func (r *SettingsRepository) get(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := r.pool.QueryRow(ctx, settingsSelect).Scan(
		&s.ID, &s.BusinessName, &s.BusinessAddress,
		&s.BusinessPhone, &s.BusinessEmail,
		&s.WorkingHours, &s.NotificationReminderHours)
	if err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, s model.Settings) (model.Settings, error) {
	cur, err := r.GetOrCreate(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE admin_settings
		SET business_name = $2,
			business_address = $3,
			business_phone = $4,
			business_email = $5,
			working_hours = $6,
			notification_reminder_hours = $7,
			updated_at = now()
		WHERE id = $1
	`, cur.ID, s.BusinessName, s.BusinessAddress, s.BusinessPhone, s.BusinessEmail, s.WorkingHours, s.NotificationReminderHours)
	if err != nil {
		return model.Settings{}, err
	}
	s.ID = cur.ID
	return s, nil
}
