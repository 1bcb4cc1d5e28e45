package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mhtran-dev/go-flood-risk/internal/api"
	"github.com/mhtran-dev/go-flood-risk/internal/auth"
	"github.com/mhtran-dev/go-flood-risk/internal/cache"
	"github.com/mhtran-dev/go-flood-risk/internal/clients"
	"github.com/mhtran-dev/go-flood-risk/internal/config"
	"github.com/mhtran-dev/go-flood-risk/internal/logging"
	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
	"github.com/mhtran-dev/go-flood-risk/internal/repository"
	"github.com/mhtran-dev/go-flood-risk/internal/risk"
	"github.com/mhtran-dev/go-flood-risk/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	weather := clients.NewWeatherClient(cfg.Providers.WeatherURL, cfg.Providers.WeatherAPIKey, cfg.Providers.Timeout)
	elevation := clients.NewElevationClient(cfg.Providers.ElevationURL, cfg.Providers.Timeout)
	osm := clients.NewMapClient(cfg.Providers.OverpassURL, cfg.Providers.Timeout)
	gov := clients.NewGovDataClient(cfg.Providers.GovDataURL, cfg.Providers.GovDataAPIKey, cfg.Providers.Timeout)

	metrics := observability.NewMetrics()

	scorers := []risk.Scorer{
		risk.NewWeatherScorer(weather, cache.New[*models.Forecast](cfg.Cache.WeatherTTL, cfg.Cache.MaxEntries, nil), metrics),
		risk.NewTerrainScorer(elevation, cache.New[[]models.ElevationPoint](cfg.Cache.ElevationTTL, cfg.Cache.MaxEntries, nil), metrics),
		risk.NewInfrastructureScorer(osm, cache.New[*models.InfrastructureBundle](cfg.Cache.InfrastructureTTL, cfg.Cache.MaxEntries, nil), metrics),
		risk.NewHistoricalScorer(gov, cache.New[[]models.DisasterRecord](cfg.Cache.GovDataTTL, cfg.Cache.MaxEntries, nil), nil, metrics),
		risk.NewPopulationScorer(gov, cache.New[*models.DensityRecord](cfg.Cache.GovDataTTL, cfg.Cache.MaxEntries, nil), metrics),
	}

	engine, err := risk.NewEngine(scorers, cfg.Engine.ScorerTimeout, nil, metrics)
	if err != nil {
		logging.Fatalf("Failed to build assessment engine: %v", err)
	}

	orchestrator := risk.NewOrchestrator(engine, risk.NewPacer(cfg.Batch.PacingDelay), cfg.Batch.GroupSize, metrics)
	compiler := risk.NewAlertCompiler(weather, gov, nil, metrics)
	authSvc := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, nil)
	broadcaster := stream.NewBroadcaster()

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	handler := api.NewHandler(engine, orchestrator, compiler, db, authSvc, broadcaster, metrics)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	broadcaster.Close() // Close all streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
