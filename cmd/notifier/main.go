package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"staydesk/internal/notifier"
	"staydesk/pkg/app"
	"staydesk/pkg/config"
	"staydesk/pkg/kafka"
	kafka_config "staydesk/pkg/kafka/config"
	kafka_middleware "staydesk/pkg/kafka/middleware"
	"staydesk/pkg/metrics"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.RedisAddr == "" {
		cfg.Log.Fatal("REDIS_ADDR is required for event deduplication")
	}
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	m := metrics.New(ServiceName)
	handler := notifier.NewHandler(
		notifier.NewRedisDeduper(cfg.Client.Redis, ServiceName, notifier.DefaultDedupTTL),
		notifier.NewLogSender(cfg.Log),
		cfg.Log,
	)

	consumer, err := kafka.NewConsumer(kafkaCfg, handler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := opsServer(cfg, m)
	go func() {
		cfg.Log.Info("Starting ops server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Ops server failed", "error", err)
			stop()
		}
	}()

	cfg.Log.Info("Starting notifier", "topic", kafkaCfg.Topic, "group", kafkaCfg.ConsumerGroup)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		cfg.Log.Error("Ops server shutdown failed", "error", err)
	}
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}

// opsServer exposes health and metrics; the notifier has no public API.
func opsServer(cfg *config.Config, m *metrics.Metrics) *http.Server {
	rdb := cfg.Client.Redis
	checks := map[string]app.DependencyCheck{
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	router := httprouter.New()
	app.NewHealthHandler(checks, cfg.Log).RegisterRoutes(router)
	router.Handler(http.MethodGet, "/metrics", m.Handler())

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
