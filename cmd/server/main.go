package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"

	api "vehicle-rental-backend/internal/api/grpc"
	httpapi "vehicle-rental-backend/internal/api/http"
	"vehicle-rental-backend/internal/cache"
	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/events"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/metrics"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/repository/memory"
	"vehicle-rental-backend/internal/repository/postgres"
	"vehicle-rental-backend/internal/security"
	"vehicle-rental-backend/internal/service"
	"vehicle-rental-backend/internal/utils"
)

const producerName = "vehicle-rental-server"

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
	logger.Info("Starting Vehicle Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize persistence
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()
	checks := map[string]httpapi.Pinger{"database": store}

	// Initialize ticket cache
	var tickets service.TicketCache
	if cfg.Redis.Enabled {
		rdb := cache.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		if err := cache.Ping(ctx, rdb); err != nil {
			logger.Warn("Redis unreachable at startup, ticket cache will retry per request", "addr", cfg.Redis.Addr, "error", err)
		}
		tickets = cache.NewTicketCache(rdb, cfg.TicketCacheTTL())
		checks["redis"] = httpapi.PingFunc(func(ctx context.Context) error { return cache.Ping(ctx, rdb) })
		logger.Info("Ticket cache enabled", "addr", cfg.Redis.Addr)
	}

	// Initialize event publisher
	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()
	notifier := events.NewNotifier(publisher, producerName, m)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())

	// Initialize Services
	authSvc := service.NewAuthService(store, tokenManager)
	vehicleSvc := service.NewVehicleService(store, tickets)
	bookingSvc := service.NewBookingService(store, notifier, tickets, m, utils.SystemClock{})

	// Set up gRPC server
	healthSrv := health.NewServer()
	grpcServer := api.NewServer(api.ServerDeps{
		Auth:         authSvc,
		Vehicles:     vehicleSvc,
		Bookings:     bookingSvc,
		TokenManager: tokenManager,
		Metrics:      m,
		Health:       healthSrv,
	})

	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	// Set up ops HTTP server
	router := mux.NewRouter()
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	httpapi.RegisterOpsRoutes(router, httpapi.NewOpsHandler(checks, reg), metricsPath)
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("Ops HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		healthSrv.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}

		done := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			logger.Warn("Graceful stop timed out, forcing")
			grpcServer.Stop()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		log.Fatalf("Server error: %v", err)
	}
	logger.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.Storage.Type == config.StorageTypeMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil
	}
	logger.Info("Connecting to database...", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection established")
	return postgres.NewStore(db), nil
}

// newPublisher returns the Kafka producer, or an in-process dispatcher that
// delivers emails directly when no broker is configured.
func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.Events.Mode == config.EventsModeKafka {
		logger.Info("Publishing booking events to Kafka", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
		return events.NewKafkaProducer(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.BufferSize)
	}
	logger.Info("Delivering booking events in-process", "workers", cfg.Events.Workers)
	email := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	return events.NewDispatcher(events.NewEmailHandler(email).Handle, cfg.Events.Workers, cfg.Events.BufferSize)
}
