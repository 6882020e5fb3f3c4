package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/amirv/salonbook/libs/config"
	"github.com/amirv/salonbook/libs/db"
	"github.com/amirv/salonbook/libs/httpx"
	"github.com/amirv/salonbook/libs/kafkax"
	otelx "github.com/amirv/salonbook/libs/otel"
	"github.com/amirv/salonbook/libs/runtime"
	"github.com/amirv/salonbook/services/booking-api/internal/handlers"
	"github.com/amirv/salonbook/services/booking-api/internal/model"
	"github.com/amirv/salonbook/services/booking-api/internal/outbox"
	"github.com/amirv/salonbook/services/booking-api/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "booking-api")
	port, err := config.Port("PORT", "8000")
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
	pool, err := db.Open(ctx, dbURL, int32(config.Int("DB_MAX_CONNS", 8)))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	users := storage.NewUserRepository(pool)
	clients := storage.NewClientRepository(pool)
	services := storage.NewServiceRepository(pool)
	appointments := storage.NewAppointmentRepository(pool)
	settings := storage.NewSettingsRepository(pool)
	stats := storage.NewStatsRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	if err := seedAdmin(ctx, users); err != nil {
		logger.Error("admin seed failed", "err", err)
		panic(err)
	}
	if config.Bool("SEED_DEMO_DATA", false) {
		if err := seedDemoServices(ctx, services); err != nil {
			logger.Warn("demo data seed failed", "err", err)
		}
	}

	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go publisher.Run(ctx)

	secret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}
	tokenTTL := time.Duration(config.Int("TOKEN_TTL_MINUTES", 30)) * time.Minute

	authHandler := handlers.NewAuthHandler(secret, tokenTTL, users)
	serviceHandler := handlers.NewServiceHandler(services)
	settingsHandler := handlers.NewSettingsHandler(settings)
	clientHandler := handlers.NewClientHandler(clients)
	statsHandler := handlers.NewStatsHandler(stats)
	appointmentHandler := handlers.NewAppointmentHandler(pool, appointments, clients, services, outboxRepo, logger)

	publicLimit := publicRateLimit(logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.Handle("POST /token", publicLimit(http.HandlerFunc(authHandler.Token)))
	mux.Handle("POST /register", publicLimit(http.HandlerFunc(authHandler.Register)))
	mux.HandleFunc("GET /users/me/", authHandler.RequireAuth(authHandler.Me))

	mux.Handle("GET /services/", publicLimit(http.HandlerFunc(serviceHandler.List)))
	mux.HandleFunc("POST /services/", authHandler.RequireAdmin(serviceHandler.Create))

	mux.Handle("GET /settings/", publicLimit(http.HandlerFunc(settingsHandler.Get)))
	mux.HandleFunc("GET /admin/settings/", authHandler.RequireAdmin(settingsHandler.Get))
	mux.HandleFunc("PUT /admin/settings/", authHandler.RequireAdmin(settingsHandler.Update))

	mux.Handle("POST /appointments/", publicLimit(http.HandlerFunc(appointmentHandler.Create)))
	mux.Handle("GET /client-appointments/{phone}", publicLimit(http.HandlerFunc(appointmentHandler.ListByPhone)))
	mux.HandleFunc("GET /appointments-with-details/", authHandler.RequireAdmin(appointmentHandler.ListWithDetails))
	mux.HandleFunc("GET /admin/all-appointments/", authHandler.RequireAdmin(appointmentHandler.ListFiltered))
	mux.HandleFunc("PUT /appointments/{id}/status", authHandler.RequireAdmin(appointmentHandler.UpdateStatus))

	mux.HandleFunc("GET /clients/", authHandler.RequireAdmin(clientHandler.List))
	mux.HandleFunc("GET /statistics/", authHandler.RequireAdmin(statsHandler.Get))

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitCSV(config.String("CORS_ALLOWED_ORIGINS", "*")),
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking-api")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// publicRateLimit protects unauthenticated endpoints. Uses Redis when
// REDIS_ADDR is configured so limits hold across replicas, otherwise an
// in-process fixed window.
func publicRateLimit(logger *slog.Logger) httpx.Middleware {
	limit := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		limiter := httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "booking-api:rl")
		return limiter.Middleware(logger, true)
	}
	return httpx.NewRateLimiter(limit, time.Minute).Middleware()
}

func seedAdmin(ctx context.Context, users *storage.UserRepository) error {
	username := config.String("ADMIN_USERNAME", "admin")
	email := config.String("ADMIN_EMAIL", "admin@salon.local")
	password := config.String("ADMIN_PASSWORD", "admin123")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return users.EnsureAdmin(ctx, username, email, string(hash))
}

func seedDemoServices(ctx context.Context, services *storage.ServiceRepository) error {
	existing, err := services.ListActive(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}
	demo := []model.Service{
		{Name: "Haircut", Price: 30, Duration: 45, Description: "Wash, cut and style"},
		{Name: "Coloring", Price: 80, Duration: 120, Description: "Full color treatment"},
		{Name: "Manicure", Price: 25, Duration: 40, Description: "Classic manicure"},
	}
	for _, svc := range demo {
		if _, err := services.Create(ctx, svc); err != nil {
			return err
		}
	}
	return nil
}
