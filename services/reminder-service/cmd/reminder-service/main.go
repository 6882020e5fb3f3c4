package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/amirv/salonbook/libs/config"
	"github.com/amirv/salonbook/libs/db"
	"github.com/amirv/salonbook/libs/kafkax"
	otelx "github.com/amirv/salonbook/libs/otel"
	"github.com/amirv/salonbook/libs/runtime"
	"github.com/amirv/salonbook/services/reminder-service/internal/consumer"
	"github.com/amirv/salonbook/services/reminder-service/internal/email"
	"github.com/amirv/salonbook/services/reminder-service/internal/inbox"
	"github.com/amirv/salonbook/services/reminder-service/internal/jobs"
)

// appointmentEvent is the payload shape of booking.appointment.*.v1 events.
type appointmentEvent struct {
	AppointmentID   int64  `json:"appointment_id"`
	AppointmentDate string `json:"appointment_date"`
	Status          string `json:"status"`
	ClientName      string `json:"client_name"`
	ClientPhone     string `json:"client_phone"`
	ClientEmail     string `json:"client_email"`
	ServiceName     string `json:"service_name"`
}

func main() {
	service := config.String("SERVICE_NAME", "reminder-service")
	port, err := config.Port("PORT", "8081")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, int32(config.Int("DB_MAX_CONNS", 4)))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	jobsRepo := jobs.NewRepository(pool)
	inboxRepo := inbox.NewRepository(pool)
	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "reminder-service")

	confirmed := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   config.String("KAFKA_CONFIRMED_TOPIC", "booking.appointment.confirmed.v1"),
	}, func(ctx context.Context, msg kafka.Message) error {
		return scheduleReminder(ctx, logger, jobsRepo, msg)
	})
	go confirmed.Run(ctx)

	cancelled := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   config.String("KAFKA_CANCELLED_TOPIC", "booking.appointment.cancelled.v1"),
	}, func(ctx context.Context, msg kafka.Message) error {
		var evt appointmentEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Error("invalid cancellation payload", "err", err)
			return nil
		}
		if err := jobsRepo.DeletePending(ctx, evt.AppointmentID); err != nil {
			return err
		}
		logger.Info("pending reminders dropped", "appointment_id", evt.AppointmentID)
		return nil
	})
	go cancelled.Run(ctx)

	sender := email.NewSMTPSender(
		config.String("SMTP_HOST", "localhost"),
		config.String("SMTP_PORT", "1025"),
		config.String("SMTP_FROM", ""),
	)
	worker := jobs.NewWorker(pool, jobsRepo, sender, logger, jobs.WorkerConfig{
		Interval:  time.Duration(config.Int("WORKER_INTERVAL_SECONDS", 5)) * time.Second,
		BatchSize: config.Int("WORKER_BATCH_SIZE", 50),
		Backoff:   time.Duration(config.Int("WORKER_BACKOFF_SECONDS", 60)) * time.Second,
	})
	go worker.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("health server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("reminder service stopped")
}

// scheduleReminder books a reminder email at appointment time minus the
// configured lead time. Appointments without a client email are skipped.
func scheduleReminder(ctx context.Context, logger *slog.Logger, repo *jobs.Repository, msg kafka.Message) error {
	var evt appointmentEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		logger.Error("invalid confirmation payload", "err", err)
		return nil
	}
	if evt.ClientEmail == "" {
		logger.Info("no client email; reminder skipped", "appointment_id", evt.AppointmentID)
		return nil
	}
	apptDate, err := time.Parse(time.RFC3339, evt.AppointmentDate)
	if err != nil {
		logger.Error("invalid appointment date in payload", "err", err, "value", evt.AppointmentDate)
		return nil
	}

	lead, err := repo.ReminderLeadTime(ctx)
	if err != nil {
		return err
	}
	remindAt := apptDate.Add(-lead)
	if now := time.Now(); remindAt.Before(now) {
		remindAt = now
	}

	job := jobs.Job{
		IdempotencyKey:  fmt.Sprintf("appointment:%d:reminder", evt.AppointmentID),
		AppointmentID:   evt.AppointmentID,
		Recipient:       evt.ClientEmail,
		ClientName:      evt.ClientName,
		ServiceName:     evt.ServiceName,
		AppointmentDate: apptDate,
		RemindAt:        remindAt,
	}
	if err := repo.Insert(ctx, job); err != nil {
		return err
	}
	logger.Info("reminder scheduled", "appointment_id", evt.AppointmentID, "remind_at", remindAt)
	return nil
}
