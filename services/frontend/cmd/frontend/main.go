package main

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/amirv/salonbook/libs/config"
	"github.com/amirv/salonbook/libs/httpx"
	otelx "github.com/amirv/salonbook/libs/otel"
	"github.com/amirv/salonbook/libs/runtime"
	"github.com/amirv/salonbook/services/frontend/internal/apiclient"
	"github.com/amirv/salonbook/services/frontend/internal/handlers"
	"github.com/amirv/salonbook/services/frontend/internal/session"
)

func main() {
	service := config.String("SERVICE_NAME", "frontend")
	port, err := config.Port("PORT", "8080")
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

	apiURL, err := config.RequiredString("BOOKING_API_URL")
	if err != nil {
		panic(err)
	}
	api := apiclient.New(apiURL)

	sessionTTL := time.Duration(config.Int("SESSION_TTL_HOURS", 24)) * time.Hour
	var store session.Store
	readyChecks := []runtime.ReadyCheck{}
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		store = session.NewRedisStore(rdb, sessionTTL)
		readyChecks = append(readyChecks, runtime.ReadyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		logger.Info("using redis session store", "addr", addr)
	} else {
		store = session.NewMemoryStore(sessionTTL)
		logger.Warn("REDIS_ADDR not set; sessions are in-memory and per-replica")
	}

	h, err := handlers.New(api, store, logger, config.Bool("SECURE_COOKIES", false))
	if err != nil {
		logger.Error("handler init failed", "err", err)
		panic(err)
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	h.Routes(mux)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(256<<10),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "frontend")

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
