package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/admin"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/api/router"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/appointments"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/audit"
	appconfig "github.com/IAmASonOfGod/medcare-booking-platform/internal/config"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/notify"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/observability/metrics"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/reporting"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/schedule"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

func main() {
	// Local development reads .env; production injects real env vars.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medcare-booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	// Redis holds practice settings.
	redisClient := redis.NewClient(redisOptions(cfg))
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	practiceStore := practice.NewStore(redisClient)

	// Postgres holds appointments and the audit trail.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	auditDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open audit db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = auditDB.Close() }()

	bookingMetrics := metrics.NewBookingMetrics(nil)
	auditService := audit.NewService(auditDB, logger)

	emailSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	var sender notify.EmailSender
	if emailSender != nil {
		sender = emailSender
	} else {
		logger.Warn("sendgrid not configured, email notifications disabled")
		sender = notify.NewStubEmailSender(logger)
	}
	notifyService := notify.NewService(sender, practiceStore, logger)

	apptRepo := appointments.NewRepository(pool)
	validator := schedule.NewValidator(apptRepo, practiceStore, bookingMetrics, logger)
	apptService := appointments.NewService(apptRepo, validator, bookingMetrics, notifyService, auditService, logger)

	reportingService := reporting.NewService(practiceStore, apptRepo, logger)
	adminService := admin.NewService(practiceStore, notifyService, auditService, cfg.AdminJWTSecret, cfg.AdminInviteTTL, logger)

	routerCfg := &router.Config{
		Logger:              logger,
		PracticeHandler:     practice.NewHandler(practiceStore, auditService, logger),
		AvailabilityHandler: schedule.NewHandler(practiceStore, apptRepo, schedule.DefaultGates(), logger),
		AppointmentsHandler: appointments.NewHandler(apptService, practiceStore, logger),
		ReportingHandler:    reporting.NewHandler(reportingService, nil, logger),
		AdminHandler:        admin.NewHandler(adminService, auditService, logger),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  5,
		RateLimitBurst:      10,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func redisOptions(cfg *appconfig.Config) *redis.Options {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}
