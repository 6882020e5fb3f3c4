package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/amirv/salonbook/libs/db"
	otelx "github.com/amirv/salonbook/libs/otel"
)

// Job is one scheduled reminder email.
type Job struct {
	ID              int64
	IdempotencyKey  string
	AppointmentID   int64
	Recipient       string
	ClientName      string
	ServiceName     string
	AppointmentDate time.Time
	RemindAt        time.Time
	Traceparent     string
	Tracestate      string
	Attempts        int
	MaxAttempts     int
	NextRunAt       time.Time
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Insert schedules a job. The idempotency key makes redelivered confirmation
// events a no-op.
func (r *Repository) Insert(ctx context.Context, job Job) error {
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reminder_jobs
			(idempotency_key, appointment_id, recipient, client_name, service_name, appointment_date, remind_at, next_run_at, traceparent, tracestate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, $9)
		ON CONFLICT (idempotency_key) DO NOTHING
	`, job.IdempotencyKey, job.AppointmentID, job.Recipient, job.ClientName, job.ServiceName,
		job.AppointmentDate, job.RemindAt, traceparent, tracestate)
	return err
}

// DeletePending drops not-yet-sent reminders for a cancelled appointment.
func (r *Repository) DeletePending(ctx context.Context, appointmentID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM reminder_jobs
		WHERE appointment_id = $1 AND status = 'pending'
	`, appointmentID)
	return err
}

func (r *Repository) FetchDue(ctx context.Context, tx pgx.Tx, limit int) ([]Job, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, idempotency_key, appointment_id, recipient, client_name, service_name,
			appointment_date, remind_at, traceparent, tracestate, attempts, max_attempts, next_run_at
		FROM reminder_jobs
		WHERE status = 'pending' AND next_run_at <= now()
		ORDER BY next_run_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.IdempotencyKey, &j.AppointmentID, &j.Recipient, &j.ClientName,
			&j.ServiceName, &j.AppointmentDate, &j.RemindAt, &j.Traceparent, &j.Tracestate,
			&j.Attempts, &j.MaxAttempts, &j.NextRunAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return jobs, nil
}

func (r *Repository) MarkProcessed(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE reminder_jobs
		SET status = 'processed', updated_at = now()
		WHERE id = ANY($1)
	`, ids)
	return err
}

func (r *Repository) MarkFailed(ctx context.Context, tx pgx.Tx, id int64, attempts, maxAttempts int, nextRunAt time.Time, lastError string) error {
	status := "pending"
	if attempts >= maxAttempts {
		status = "failed"
	}
	_, err := tx.Exec(ctx, `
		UPDATE reminder_jobs
		SET attempts = $2,
			status = $3,
			next_run_at = $4,
			last_error = $5,
			updated_at = now()
		WHERE id = $1
	`, id, attempts, status, nextRunAt, lastError)
	return err
}

// ReminderLeadTime reads the configured lead time from the shared settings
// row, defaulting to 24 hours when none exists yet.
func (r *Repository) ReminderLeadTime(ctx context.Context) (time.Duration, error) {
	var hours int
	err := r.pool.QueryRow(ctx, `
		SELECT notification_reminder_hours FROM admin_settings ORDER BY id LIMIT 1
	`).Scan(&hours)
	if errors.Is(err, pgx.ErrNoRows) {
		return 24 * time.Hour, nil
	}
	if err != nil {
		return 0, err
	}
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour, nil
}
