package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/config"
	appointmentHandler "github.com/jwalitptl/hospital-api/internal/handler/appointment"
	billingHandler "github.com/jwalitptl/hospital-api/internal/handler/billing"
	doctorHandler "github.com/jwalitptl/hospital-api/internal/handler/doctor"
	healthHandler "github.com/jwalitptl/hospital-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/hospital-api/internal/handler/patient"
	recordHandler "github.com/jwalitptl/hospital-api/internal/handler/record"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/router"
	billingService "github.com/jwalitptl/hospital-api/internal/service/billing"
	doctorService "github.com/jwalitptl/hospital-api/internal/service/doctor"
	patientService "github.com/jwalitptl/hospital-api/internal/service/patient"
	recordService "github.com/jwalitptl/hospital-api/internal/service/record"
	"github.com/jwalitptl/hospital-api/internal/service/scheduling"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	billRepo := postgres.NewBillRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	m := metrics.NewMetrics("hospital_api")
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	slots := scheduling.DefaultSlots
	if len(cfg.Scheduling.Slots) > 0 {
		slots = cfg.Scheduling.Slots
	}

	schedulingSvc := scheduling.NewService(
		appointmentRepo,
		doctorRepo,
		patientRepo,
		outboxRepo,
		scheduling.NewSlotSet(slots),
		m,
	)
	doctorSvc := doctorService.NewService(doctorRepo, hasher)
	patientSvc := patientService.NewService(patientRepo, hasher)
	billingSvc := billingService.NewService(billRepo, patientRepo)
	recordSvc := recordService.NewService(recordRepo, patientRepo)

	authMiddleware := middleware.NewAuthMiddleware(auth.NewValidator(cfg.JWT.Secret))

	r := router.NewRouter(
		authMiddleware,
		healthHandler.NewHandler(db),
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORS:             middleware.DefaultCORSConfig(),
			MetricsPrefix:    "hospital_api_http",
		},
		appointmentHandler.NewHandler(schedulingSvc),
		doctorHandler.NewHandler(doctorSvc),
		patientHandler.NewHandler(patientSvc, billingSvc),
		billingHandler.NewHandler(billingSvc),
		recordHandler.NewHandler(recordSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
