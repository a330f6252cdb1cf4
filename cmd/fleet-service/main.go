package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nurpe/fleet-rental/internal/auth"
	"github.com/nurpe/fleet-rental/internal/config"
	"github.com/nurpe/fleet-rental/internal/db"
	"github.com/nurpe/fleet-rental/internal/events"
	"github.com/nurpe/fleet-rental/internal/fidelity"
	httphandler "github.com/nurpe/fleet-rental/internal/http"
	"github.com/nurpe/fleet-rental/internal/http/middleware"
	"github.com/nurpe/fleet-rental/internal/jobs"
	"github.com/nurpe/fleet-rental/internal/logger"
	"github.com/nurpe/fleet-rental/internal/repository"
	"github.com/nurpe/fleet-rental/internal/repository/memory"
	"github.com/nurpe/fleet-rental/internal/repository/postgres"
	"github.com/nurpe/fleet-rental/internal/service"
)

const shutdownTimeout = 15 * time.Second

type store interface {
	repository.UnitOfWork
	Repositories() repository.Repositories
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	publisher, err := openPublisher(cfg.Events)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init event publisher")
	}
	defer publisher.Close()

	policy, err := fidelity.FromLists(cfg.Rental.FidelityThresholds, cfg.Rental.FidelityDiscounts)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid fidelity policy")
	}

	repos := st.Repositories()
	rentals := service.NewRentalService(repos, st, publisher, service.RentalPolicy{
		TaxRate:           cfg.Rental.TaxRate,
		ServiceIntervalKm: cfg.Rental.ServiceIntervalKm,
		Fidelity:          policy,
	}, log)

	handler := httphandler.NewHandler(httphandler.Services{
		Vehicles:      service.NewVehicleService(repos),
		Clients:       service.NewClientService(repos),
		Rentals:       rentals,
		Maintenance:   service.NewMaintenanceService(repos, st, publisher, log),
		Calendar:      service.NewCalendarService(repos),
		Notifications: service.NewNotificationService(repos),
		Documents:     service.NewDocumentService(repos),
		Users:         service.NewUserService(repos),
	}, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, httphandler.RouterConfig{
		Environment:    cfg.Environment,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
	}, log)

	if cfg.Alerts.Enabled {
		runner := jobs.NewAlertRunner(repos, cfg.Alerts.InsuranceWindowDays, log)
		scheduler, err := jobs.NewScheduler(runner, jobs.Schedule{
			InsuranceCron: cfg.Alerts.InsuranceCron,
			OverdueCron:   cfg.Alerts.OverdueCron,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init alert scheduler")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, "fleet-service"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("db_driver", cfg.DB.Driver).Str("events_driver", cfg.Events.Driver).Msg("starting fleet service")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("fleet service stopped")
}

func openStore(cfg *config.Config, log zerolog.Logger) (store, func(), error) {
	if cfg.DB.Driver == config.DBDriverMemory {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	database, err := db.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(database); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
	return postgres.NewStore(database), closeDB, nil
}

func openPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Driver {
	case config.EventsDriverAMQP:
		return events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	case config.EventsDriverKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return events.Noop{}, nil
	}
}
