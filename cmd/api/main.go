package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/diaperpal/diaperpal-api/internal/cache"
	httpmw "github.com/diaperpal/diaperpal-api/internal/http/middleware"
	"github.com/diaperpal/diaperpal-api/internal/http/handlers"
	"github.com/diaperpal/diaperpal-api/internal/platform/mailer"
	"github.com/diaperpal/diaperpal-api/internal/platform/places"
	"github.com/diaperpal/diaperpal-api/internal/repo/postgres"
	"github.com/diaperpal/diaperpal-api/internal/service"
	"github.com/diaperpal/diaperpal-api/pkg/config"
	"github.com/diaperpal/diaperpal-api/pkg/database"
	"github.com/diaperpal/diaperpal-api/pkg/events"
	"github.com/diaperpal/diaperpal-api/pkg/logger"
	mw "github.com/diaperpal/diaperpal-api/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	venueRepo := postgres.NewVenueRepository(pool)
	stationRepo := postgres.NewStationRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	photoRepo := postgres.NewPhotoRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	verifyRepo := postgres.NewVerifyRepository(pool)

	// Platform clients
	placesClient := places.NewClient(cfg.Places)
	emailSvc := newMailer(cfg)

	// Caches
	searchCache := cache.NewSearchCache(redisClient, cfg.Search.CacheTTL)
	idempotencyStore := cache.NewIdempotencyStore(redisClient)

	// Services
	searchSvc := service.NewSearchService(venueRepo, stationRepo, searchCache, cfg)
	venueSvc := service.NewVenueService(venueRepo, stationRepo, photoRepo, placesClient, eventBus, cfg)
	reportSvc := service.NewReportService(reportRepo, stationRepo, photoRepo, eventBus)
	authSvc := service.NewAuthService(userRepo, verifyRepo, emailSvc, eventBus, cfg)

	h := handlers.New(searchSvc, venueSvc, reportSvc, authSvc, cfg)

	// Rate limiters (redis fixed-window, fail-open)
	writeLimiter := httpmw.NewRateLimiter(redisClient, httpmw.RateLimitConfig{
		Requests: 30,
		Window:   time.Minute,
	})
	registerLimiter := httpmw.NewRateLimiter(redisClient, httpmw.RateLimitConfig{
		Requests: 5,
		Window:   time.Minute,
	})

	idempotent := httpmw.Idempotency(idempotencyStore, 24*time.Hour)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.CORS())
	r.Use(mw.Health)

	secret := cfg.Auth.JWTSecret

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(registerLimiter.Middleware()).Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Get("/verify", h.VerifyEmail)
			r.Post("/resend-verification", h.ResendVerification)
			r.With(httpmw.RequireJWT(secret, "")).Get("/me", h.Me)
		})

		r.Route("/venues", func(r chi.Router) {
			r.Get("/nearby", h.NearbyVenues)
			r.Get("/{id}", h.GetVenue)
			r.Get("/{id}/photos", h.ListVenuePhotos)

			r.Group(func(r chi.Router) {
				r.Use(httpmw.RequireJWT(secret, ""))
				r.Post("/", h.CreateVenue)
				r.Post("/{id}/stations", h.CreateStation)
			})
			r.With(httpmw.RequireJWT(secret, "moderator")).Patch("/{id}", h.UpdateVenue)
			r.With(httpmw.RequireJWT(secret, "moderator")).Post("/{id}/refresh-hours", h.RefreshVenueHours)
			r.With(httpmw.RequireJWT(secret, "admin")).Delete("/{id}", h.DeleteVenue)
		})

		r.Route("/stations", func(r chi.Router) {
			r.Get("/{id}", h.GetStation)
			r.Get("/{id}/reports", h.ListReports)
			r.Get("/{id}/photos", h.ListStationPhotos)

			r.With(httpmw.RequireJWT(secret, "moderator")).Patch("/{id}", h.UpdateStation)

			// Reports and photos accept anonymous submissions; a token just
			// attributes the record. Votes need an account.
			r.Group(func(r chi.Router) {
				r.Use(httpmw.OptionalJWT(secret))
				r.With(writeLimiter.Middleware(), idempotent).Post("/{id}/reports", h.CreateReport)
				r.With(writeLimiter.Middleware()).Post("/{id}/photos", h.AddPhoto)
			})
			r.Group(func(r chi.Router) {
				r.Use(httpmw.RequireJWT(secret, ""))
				r.Put("/{id}/vote", h.Vote)
				r.Delete("/{id}/vote", h.Unvote)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// newMailer picks the email backend: dev logger, MailerSend when a key is
// configured, SMTP otherwise.
func newMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailer(cfg.Email.MailerSendKey, "DiaperPal", cfg.Email.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPFrom,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPass,
			cfg.Email.SMTPUseTLS,
		)
	}
}
