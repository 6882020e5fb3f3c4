package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/amirv/salonbook/libs/db"
	"github.com/amirv/salonbook/services/booking-api/internal/model"
)

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *AppointmentRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) error {
	return tx.QueryRow(ctx, `
		INSERT INTO appointments (client_id, service_id, appointment_date, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, appt.ClientID, appt.ServiceID, appt.AppointmentDate, appt.Status, appt.Notes).
		Scan(&appt.ID, &appt.CreatedAt)
}

const detailsSelect = `
	SELECT a.id, a.client_id, a.service_id, a.appointment_date, a.status, COALESCE(a.notes, ''), a.created_at,
		c.name, c.phone, COALESCE(c.email, ''),
		s.name, s.price
	FROM appointments a
	JOIN clients c ON c.id = a.client_id
	JOIN services s ON s.id = a.service_id
`

func scanDetails(rows pgx.Rows) ([]model.AppointmentDetails, error) {
	var appts []model.AppointmentDetails
	for rows.Next() {
		var d model.AppointmentDetails
		if err := rows.Scan(
			&d.ID, &d.ClientID, &d.ServiceID, &d.AppointmentDate, &d.Status, &d.Notes, &d.CreatedAt,
			&d.ClientName, &d.ClientPhone, &d.ClientEmail,
			&d.ServiceName, &d.ServicePrice,
		); err != nil {
			return nil, err
		}
		appts = append(appts, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

// ListFiltered returns joined appointment rows newest-first. status narrows
// to one status; dateFrom/dateTo bound the appointment date inclusively
// (dateFrom at midnight, dateTo at end of day).
func (r *AppointmentRepository) ListFiltered(ctx context.Context, status string, dateFrom, dateTo *time.Time) ([]model.AppointmentDetails, error) {
	query := detailsSelect + ` WHERE 1=1`
	var args []any
	if status != "" {
		args = append(args, status)
		query += ` AND a.status = $1`
	}
	if dateFrom != nil {
		args = append(args, time.Date(dateFrom.Year(), dateFrom.Month(), dateFrom.Day(), 0, 0, 0, 0, dateFrom.Location()))
		query += ` AND a.appointment_date >= $` + strconv.Itoa(len(args))
	}
	if dateTo != nil {
		args = append(args, time.Date(dateTo.Year(), dateTo.Month(), dateTo.Day(), 23, 59, 59, 0, dateTo.Location()))
		query += ` AND a.appointment_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY a.appointment_date DESC, a.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

func (r *AppointmentRepository) ListByPhone(ctx context.Context, phone string) ([]model.AppointmentDetails, error) {
	rows, err := r.pool.Query(ctx, detailsSelect+`
		WHERE c.phone = $1
		ORDER BY a.appointment_date DESC, a.id DESC
	`, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

func (r *AppointmentRepository) GetDetails(ctx context.Context, id int64) (model.AppointmentDetails, error) {
	var d model.AppointmentDetails
	err := r.pool.QueryRow(ctx, detailsSelect+` WHERE a.id = $1`, id).Scan(
		&d.ID, &d.ClientID, &d.ServiceID, &d.AppointmentDate, &d.Status, &d.Notes, &d.CreatedAt,
		&d.ClientName, &d.ClientPhone, &d.ClientEmail,
		&d.ServiceName, &d.ServicePrice,
	)
	if err != nil {
		return model.AppointmentDetails{}, err
	}
	return d, nil
}

func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.Appointment, error) {
	var a model.Appointment
	err := tx.QueryRow(ctx, `
		SELECT id, client_id, service_id, appointment_date, status, COALESCE(notes, ''), created_at
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&a.ID, &a.ClientID, &a.ServiceID, &a.AppointmentDate, &a.Status, &a.Notes, &a.CreatedAt)
	if err != nil {
		return model.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status string) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1
	`, id, status)
	return err
}

// InsertRevenue records earned revenue when an appointment completes.
func (r *AppointmentRepository) InsertRevenue(ctx context.Context, tx pgx.Tx, appointmentID int64, amount float64, date time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO revenues (appointment_id, amount, date)
		VALUES ($1, $2, $3)
	`, appointmentID, amount, date)
	return err
}
