package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/amirv/salonbook/libs/db"
	otelx "github.com/amirv/salonbook/libs/otel"
	"github.com/amirv/salonbook/services/reminder-service/internal/email"
)

// Worker polls due reminder jobs and sends the emails. A failed send is
// retried with a fixed backoff until max attempts is reached.
type Worker struct {
	pool      *db.Pool
	repo      *Repository
	sender    email.Sender
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	backoff   time.Duration
}

type WorkerConfig struct {
	Interval  time.Duration
	BatchSize int
	Backoff   time.Duration
}

func NewWorker(pool *db.Pool, repo *Repository, sender email.Sender, logger *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 1 * time.Minute
	}
	return &Worker{
		pool:      pool,
		repo:      repo,
		sender:    sender,
		logger:    logger,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		backoff:   cfg.Backoff,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				w.logger.Error("reminder batch failed", "err", err)
			}
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	due, err := w.repo.FetchDue(ctx, tx, w.batchSize)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return tx.Commit(ctx)
	}

	var sent []int64
	for _, job := range due {
		jobCtx := otelx.ContextWithTraceContext(ctx, job.Traceparent, job.Tracestate)
		_, span := otel.Tracer("reminder").Start(jobCtx, "reminder.send",
			trace.WithAttributes(attribute.Int64("appointment.id", job.AppointmentID)))

		subject, body := ReminderMessage(job)
		if err := w.sender.Send(job.Recipient, subject, body); err != nil {
			span.RecordError(err)
			span.End()
			attempts := job.Attempts + 1
			nextRunAt := time.Now().UTC().Add(w.backoff)
			if markErr := w.repo.MarkFailed(ctx, tx, job.ID, attempts, job.MaxAttempts, nextRunAt, err.Error()); markErr != nil {
				return markErr
			}
			w.logger.Error("reminder send failed", "err", err,
				"appointment_id", job.AppointmentID, "attempts", attempts)
			continue
		}
		span.End()
		sent = append(sent, job.ID)
		w.logger.Info("reminder sent", "appointment_id", job.AppointmentID, "recipient", job.Recipient)
	}

	if err := w.repo.MarkProcessed(ctx, tx, sent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReminderMessage renders the plain-text reminder for a job.
func ReminderMessage(job Job) (subject string, body string) {
	when := job.AppointmentDate.Local().Format("Monday, 2 January at 15:04")
	subject = fmt.Sprintf("Reminder: %s on %s", job.ServiceName, job.AppointmentDate.Local().Format("2 Jan"))
	body = fmt.Sprintf(
		"Hello %s,\r\n\r\nThis is a reminder about your upcoming appointment:\r\n\r\n  %s\r\n  %s\r\n\r\nSee you soon!",
		job.ClientName, job.ServiceName, when,
	)
	return subject, body
}
