package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/ridemaps/backend/internal/adapters/database"
	"github.com/zatekoja/ridemaps/backend/internal/adapters/geo"
	"github.com/zatekoja/ridemaps/backend/internal/adapters/providers/maps"
	"github.com/zatekoja/ridemaps/backend/internal/api/handlers"
	"github.com/zatekoja/ridemaps/backend/internal/api/routes"
	"github.com/zatekoja/ridemaps/backend/internal/application/services"
	"github.com/zatekoja/ridemaps/backend/internal/domain/repositories"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/observability"
	"github.com/zatekoja/ridemaps/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	log.Info().
		Str("service", cfg.OTEL.ServiceName).
		Str("version", cfg.OTEL.ServiceVersion).
		Str("env", cfg.Server.Env).
		Str("captain_store", cfg.Captains.Backend).
		Msg("Starting API server")

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize metrics")
	}

	captainRepo, closeStore := newCaptainRepository(cfg, metrics)
	defer closeStore()

	if cfg.Maps.APIKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API is not set; the provider will reject lookups")
	}
	mapsClient := maps.NewGoogleMapsClientWithOptions(maps.Options{
		APIKey:  cfg.Maps.APIKey,
		BaseURL: cfg.Maps.BaseURL,
		Timeout: cfg.Maps.Timeout,
		Metrics: metrics,
	})

	mapsService := services.NewMapsService(mapsClient, captainRepo)

	router := routes.NewRouter(
		handlers.NewMapsHandler(mapsService),
		handlers.NewCaptainHandler(mapsService),
		cfg.Server.AllowedOrigins,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	// A retried provider call can take twice the per-attempt timeout
	writeTimeout := 2*cfg.Maps.Timeout + 5*time.Second
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}

// newCaptainRepository opens the configured captain store and returns its closer
func newCaptainRepository(cfg *config.Config, metrics *observability.Metrics) (repositories.CaptainRepository, func()) {
	switch cfg.Captains.Backend {
	case config.CaptainStoreRedis:
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis client")
		}
		log.Info().Msg("Redis client initialized successfully")
		return geo.NewRedisCaptainIndex(redisClient), func() { redisClient.Close() }
	default:
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
		}
		log.Info().Msg("PostgreSQL client initialized successfully")
		return database.NewCaptainAdapter(pgClient, metrics), func() { pgClient.Close() }
	}
}
