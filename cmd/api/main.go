package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freelance-marketplace-backend/config"
	v1 "freelance-marketplace-backend/internal/delivery/http/v1"
	"freelance-marketplace-backend/internal/geo"
	"freelance-marketplace-backend/internal/repository/postgres"
	"freelance-marketplace-backend/internal/usecase"
	"freelance-marketplace-backend/pkg/database"
	"freelance-marketplace-backend/pkg/logger"
	"freelance-marketplace-backend/pkg/redis"

	"github.com/go-playground/validator/v10"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting marketplace backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory fallbacks", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	profileRepo := postgres.NewProfileRepository(dbPool)
	cityRepo := postgres.NewCityRepository(dbPool)
	requestRepo := postgres.NewClientRequestRepository(dbPool)

	// 6. Setup Geocoding
	geocoder := geo.NewNominatimClient(
		cfg.GeocoderBaseURL,
		cfg.GeocoderUserAgent,
		time.Duration(cfg.GeocoderTimeoutSeconds)*time.Second,
	)
	geoCache := geo.NewCache(redis.Client())
	resolver := geo.NewResolver(geocoder, geoCache, cityRepo, logger.Log, cfg.GeoBudgetPerCompute)

	// 7. Setup UseCases
	validate := validator.New()
	shortlistUC := usecase.NewShortlistUsecase(profileRepo, cityRepo, requestRepo, resolver, validate, cfg.ShortlistLimit)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ShortlistUC: shortlistUC,
		Config:      cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
