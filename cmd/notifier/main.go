package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"vehicle-rental-backend/internal/cache"
	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/events"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Vehicle Rental Notifier...", "log_level", cfg.Log.Level)

	if cfg.Events.Mode != config.EventsModeKafka {
		log.Fatalf("Notifier requires events.mode=%s, got %q", config.EventsModeKafka, cfg.Events.Mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Email Service
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	handler := events.NewEmailHandler(emailSvc).Handle

	// Redis makes redelivered events send a single email
	if cfg.Redis.Enabled {
		rdb := cache.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		if err := cache.Ping(ctx, rdb); err != nil {
			logger.Warn("Redis unreachable at startup, deduplication degrades to at-least-once", "addr", cfg.Redis.Addr, "error", err)
		}
		handler = events.WithDedup(handler, cache.NewEventDeduper(rdb, cfg.Events.GroupID))
	}

	consumer := events.NewKafkaConsumer(cfg.Events.Brokers, cfg.Events.GroupID, cfg.Events.Topic, cfg.Events.Workers)
	logger.Info("Consuming booking events", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic, "group_id", cfg.Events.GroupID)

	if err := consumer.Run(ctx, handler); err != nil {
		logger.Error("Consumer stopped with error", "error", err)
		log.Fatalf("Consumer error: %v", err)
	}
	logger.Info("Notifier stopped")
}
