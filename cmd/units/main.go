package main

import (
	"staydesk/internal/units/handler"
	"staydesk/internal/units/repository"
	"staydesk/internal/units/service"
	"staydesk/internal/units/validator"
	"staydesk/pkg/app"
	"staydesk/pkg/auth"
	"staydesk/pkg/config"
	"staydesk/pkg/metrics"
)

const ServiceName = "units"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.JWTSecret == "" {
		cfg.Log.Fatal("JWT_SECRET is required")
	}

	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Units service")
	unitService := initServices(cfg)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(ServiceName)
	}

	serverApp := app.NewApplication(cfg, m)
	serverApp.SetApp(
		auth.NewVerifier(cfg.JWTSecret, auth.DefaultIssuer),
		handler.NewUnitHandler(unitService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.UnitService {
	unitValidator := validator.NewUnitValidator(cfg.Log)
	unitRepo := repository.NewMongoUnitRepository(cfg)
	unitService := service.NewUnitService(
		unitRepo,
		unitValidator,
		cfg,
	)

	cfg.Log.Info("Unit service initialized", "database", cfg.MongoDatabaseName)
	return unitService
}
