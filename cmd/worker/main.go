package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/email"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/service/notification"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	redisbroker "github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/worker"
)

// workerConfig is environment-driven: the worker ships as a sidecar
// container and has no config file of its own.
type workerConfig struct {
	DatabaseHost     string        `envconfig:"DB_HOST" default:"localhost"`
	DatabasePort     int           `envconfig:"DB_PORT" default:"5432"`
	DatabaseUser     string        `envconfig:"DB_USER" default:"postgres"`
	DatabasePassword string        `envconfig:"DB_PASSWORD" required:"true"`
	DatabaseName     string        `envconfig:"DB_NAME" default:"hospital"`
	DatabaseSSLMode  string        `envconfig:"DB_SSLMODE" default:"disable"`
	RedisURL         string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	SMTPHost         string        `envconfig:"SMTP_HOST" required:"true"`
	SMTPPort         int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername     string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword     string        `envconfig:"SMTP_PASSWORD"`
	SMTPFrom         string        `envconfig:"SMTP_FROM" required:"true"`
	BatchSize        int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	PollInterval     time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	HealthAddr       string        `envconfig:"HEALTH_ADDR" default:":8081"`
}

func main() {
	l := logger.NewLogger(nil)

	var cfg workerConfig
	if err := envconfig.Process("worker", &cfg); err != nil {
		l.Fatal(err, "failed to load worker configuration")
	}

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Name:     cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		l.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewBroker(redisbroker.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err != nil {
		l.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("hospital_worker")

	processor := worker.NewOutboxProcessor(
		postgres.NewOutboxRepository(db),
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:    cfg.BatchSize,
			PollInterval: cfg.PollInterval,
		},
		l,
		m,
	)

	notifier := notification.NewService(
		email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}),
		postgres.NewPatientRepository(db),
		postgres.NewDoctorRepository(db),
		l,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startHealthServer(cfg.HealthAddr, l)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()

	for _, eventType := range []string{
		model.EventAppointmentBooked,
		model.EventAppointmentRescheduled,
		model.EventAppointmentCancelled,
	} {
		wg.Add(1)
		go func(eventType string) {
			defer wg.Done()
			consumeEvents(ctx, broker, eventType, notifier, l)
		}(eventType)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down worker")
	cancel()
	wg.Wait()
}

func consumeEvents(ctx context.Context, broker messaging.Broker, eventType string, notifier *notification.Service, l *logger.Logger) {
	msgs, err := broker.Subscribe(ctx, eventType)
	if err != nil {
		l.Error(err, "failed to subscribe", "event_type", eventType)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-msgs:
			if !ok {
				return
			}
			if err := notifier.HandleAppointmentEvent(ctx, eventType, payload); err != nil {
				l.Error(err, "failed to handle event", "event_type", eventType)
			}
		}
	}
}

func startHealthServer(addr string, l *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			l.Fatal(err, "health server failed")
		}
	}()
}
