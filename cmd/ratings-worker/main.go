package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ratinghandler "tourism/internal/ratings/handler"
	ratingrepo "tourism/internal/ratings/repository"
	ratingservice "tourism/internal/ratings/service"
	"tourism/pkg/cache"
	"tourism/pkg/config"
	"tourism/pkg/kafka"
	kafka_config "tourism/pkg/kafka/config"
	kafkamiddleware "tourism/pkg/kafka/middleware"
	"tourism/pkg/metrics"
)

const ServiceName = "ratings-worker"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.SetRedis()
	}
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	m := metrics.NewMetrics(cfg.MetricsNamespace)
	var searchCache cache.Cache = cache.Noop{}
	if cfg.Client.Redis != nil {
		searchCache = cache.NewRedisCache(cfg.Client.Redis, cfg.SearchCacheTTL)
	}

	ratings := ratingservice.NewRatingService(ratingrepo.NewMongoRatingRepository(cfg), searchCache, m, cfg)
	handler := ratinghandler.NewReviewEventHandler(ratings, cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.KafkaReviewsTopic, cfg.KafkaRatingsGroup, cfg.KafkaDLQTopic, handler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafkamiddleware.MetricsConsumerMiddleware(m))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     m.Handler(),
		ReadTimeout: cfg.ReadTimeout,
	}
	go func() {
		cfg.Log.Info("Serving worker metrics", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Metrics server failed", "error", err)
		}
	}()

	cfg.Log.Info("Consuming review events",
		"topic", cfg.KafkaReviewsTopic,
		"group", cfg.KafkaRatingsGroup,
		"dlq", cfg.KafkaDLQTopic,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	cfg.Log.Info("Shutting down ratings worker")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		cfg.Log.Error("Metrics server shutdown failed", "error", err)
	}
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
}
