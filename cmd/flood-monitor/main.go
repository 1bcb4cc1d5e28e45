package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mhtran-dev/go-flood-risk/internal/clients"
	"github.com/mhtran-dev/go-flood-risk/internal/config"
	"github.com/mhtran-dev/go-flood-risk/internal/logging"
	"github.com/mhtran-dev/go-flood-risk/internal/monitor"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
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

	slog.Info("Monitor starting", "provinces", cfg.Monitor.Provinces, "interval", cfg.Monitor.PollInterval)

	weather := clients.NewWeatherClient(cfg.Providers.WeatherURL, cfg.Providers.WeatherAPIKey, cfg.Providers.Timeout)
	gov := clients.NewGovDataClient(cfg.Providers.GovDataURL, cfg.Providers.GovDataAPIKey, cfg.Providers.Timeout)

	metrics := observability.NewMetrics()
	compiler := risk.NewAlertCompiler(weather, gov, nil, metrics)
	broadcaster := stream.NewBroadcaster()

	// Log sink: everything broadcast ends up in the daemon's output
	_, alerts := broadcaster.Subscribe()
	go func() {
		for alert := range alerts {
			slog.Info("alert",
				"type", alert.Type,
				"severity", alert.Severity,
				"location", alert.Location,
				"message", alert.Message)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mon := monitor.New(cfg, compiler, broadcaster)
	mon.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mon.Stop()
	broadcaster.Close()

	slog.Info("shutdown complete")
}
