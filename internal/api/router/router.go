package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/admin"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/appointments"
	httpmiddleware "github.com/IAmASonOfGod/medcare-booking-platform/internal/http/middleware"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/reporting"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/schedule"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	PracticeHandler     *practice.Handler
	AvailabilityHandler *schedule.Handler
	AppointmentsHandler *appointments.Handler
	ReportingHandler    *reporting.Handler
	AdminHandler        *admin.Handler
	AdminAuthSecret     string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Per-IP rate limit on the public booking surface. Disabled when
	// RateLimitPerSecond is zero.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	rateLimit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitPerSecond > 0 {
		rateLimit = httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.PracticeHandler != nil {
			public.With(rateLimit).Post("/practices", cfg.PracticeHandler.Register)
		}
	})

	// Practice-scoped API routes
	r.Group(func(tenant chi.Router) {
		tenant.Use(requirePracticeID)

		if cfg.PracticeHandler != nil {
			tenant.Route("/practice", func(r chi.Router) {
				r.Get("/settings", cfg.PracticeHandler.GetSettings)
				r.Put("/settings", cfg.PracticeHandler.UpdateSettings)
			})
		}
		if cfg.AvailabilityHandler != nil {
			tenant.Get("/availability", cfg.AvailabilityHandler.GetAvailability)
		}
		if cfg.AppointmentsHandler != nil {
			tenant.With(rateLimit).Mount("/appointments", cfg.AppointmentsHandler.Routes())
		}
		if cfg.ReportingHandler != nil {
			tenant.Mount("/reports", cfg.ReportingHandler.Routes())
		}
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminHandler != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(adminRoutes chi.Router) {
			adminRoutes.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			adminRoutes.Mount("/", cfg.AdminHandler.Routes())
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status": "ok"}`))
}
