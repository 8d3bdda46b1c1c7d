package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fueldash/internal/app"
	"fueldash/internal/config"
	"fueldash/internal/handler"
	"fueldash/internal/jobs"
	"fueldash/internal/push"
	internalRedis "fueldash/internal/redis"
	"fueldash/internal/repository/postgres"
	"fueldash/internal/service"
	"fueldash/internal/ws"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, sweepJob := wireServer(db, redisClient, nrApp, cfg)

	if err := sweepJob.Start(); err != nil {
		log.Fatalf("failed to start offer sweep job: %v", err)
	}
	defer sweepJob.Stop()

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// background sweep job.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *jobs.OfferSweepJob) {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	orderRepo := postgres.NewOrderRepository(db)
	offerRepo := postgres.NewOfferRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	deviceRepo := postgres.NewDeviceTokenRepository(db)
	fuelPriceRepo := postgres.NewFuelPriceRepository(db)

	// Live notification channel.
	registry := ws.NewRegistry()

	// Initialize services.
	notificationService := service.NewNotificationService(notificationRepo, deviceRepo, registry, push.NewLogClient())
	pricingService := service.NewPricingService(fuelPriceRepo, cacheStore, cfg.Dispatch.ServiceFeeCents)
	dispatchService := service.NewDispatchService(driverRepo, offerRepo, locationStore, lockStore, notificationService, service.DispatchConfig{
		PremiumWindow:    cfg.Dispatch.PremiumWindow,
		StandardWindow:   cfg.Dispatch.StandardWindow,
		DefaultRateCents: cfg.Dispatch.DefaultRateCents,
		SearchRadiusKm:   cfg.Dispatch.SearchRadiusKm,
	})
	orderService := service.NewOrderService(orderRepo, offerRepo, driverRepo, dispatchService, notificationService)
	acceptanceService := service.NewAcceptanceService(orderRepo, offerRepo, driverRepo, pricingService, locationStore, notificationService)
	driverService := service.NewDriverService(locationStore, cacheStore, driverRepo)

	// Initialize handlers.
	orderHandler := handler.NewOrderHandler(orderService, acceptanceService, orderRepo, offerRepo)
	offerHandler := handler.NewOfferHandler(acceptanceService, offerRepo)
	driverHandler := handler.NewDriverHandler(driverService, driverRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, deviceRepo)
	wsHandler := handler.NewWSHandler(registry)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		OrderHandler:        orderHandler,
		OfferHandler:        offerHandler,
		DriverHandler:       driverHandler,
		NotificationHandler: notificationHandler,
		WSHandler:           wsHandler,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	sweepJob := jobs.NewOfferSweepJob(dispatchService, cfg.Dispatch.SweepInterval)

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, sweepJob
}
