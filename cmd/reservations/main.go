package main

import (
	"staydesk/internal/reservations/events"
	"staydesk/internal/reservations/handler"
	"staydesk/internal/reservations/repository"
	"staydesk/internal/reservations/service"
	"staydesk/internal/reservations/validator"
	unitsrepository "staydesk/internal/units/repository"
	unitsservice "staydesk/internal/units/service"
	unitsvalidator "staydesk/internal/units/validator"
	"staydesk/pkg/app"
	"staydesk/pkg/auth"
	"staydesk/pkg/clock"
	"staydesk/pkg/config"
	"staydesk/pkg/kafka"
	kafka_config "staydesk/pkg/kafka/config"
	kafka_middleware "staydesk/pkg/kafka/middleware"
	"staydesk/pkg/metrics"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.JWTSecret == "" {
		cfg.Log.Fatal("JWT_SECRET is required")
	}

	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	var m *metrics.Metrics
	var recorder service.Recorder
	if cfg.MetricsEnabled {
		m = metrics.New(ServiceName)
		recorder = m
	}

	serverApp := app.NewApplication(cfg, m)
	publisher := initPublisher(cfg, m, serverApp)
	reservationService := initServices(cfg, publisher, recorder)

	serverApp.SetApp(
		auth.NewVerifier(cfg.JWTSecret, auth.DefaultIssuer),
		handler.NewReservationHandler(reservationService, cfg.Log),
	)
	serverApp.Run()
}

// initPublisher returns the Kafka publisher when KAFKA_ENABLED is set, nil otherwise.
func initPublisher(cfg *config.Config, m *metrics.Metrics, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, reservation events will not be published")
		return nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	if m != nil {
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
	}
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}

func initServices(cfg *config.Config, publisher events.Publisher, recorder service.Recorder) service.ReservationService {
	unitCatalog := unitsservice.NewUnitService(
		unitsrepository.NewMongoUnitRepository(cfg),
		unitsvalidator.NewUnitValidator(cfg.Log),
		cfg,
	)

	reservationService := service.NewReservationService(
		repository.NewMongoReservationRepository(cfg),
		repository.NewMongoSlotLockRepository(cfg),
		unitCatalog,
		validator.NewReservationValidator(cfg.Log),
		clock.System{},
		publisher,
		recorder,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized",
		"database", cfg.MongoDatabaseName,
		"unit_lock_ttl", cfg.UnitLockTTL,
	)
	return reservationService
}
