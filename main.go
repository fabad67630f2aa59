package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/Black-And-White-Club/runrank-bot/app"
	"github.com/Black-And-White-Club/runrank-bot/config"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	obs := observability.Init(config.ToObsConfig(cfg))
	logger := obs.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.NewApp(ctx, cfg, obs)
	if err != nil {
		logger.Error("Failed to initialize app", attr.Error(err))
		_ = obs.Shutdown(context.Background())
		os.Exit(1)
	}

	if err := application.Start(ctx); err != nil {
		logger.Error("Application stopped with error", attr.Error(err))
		_ = application.Close()
		os.Exit(1)
	}

	logger.Info("Application shut down gracefully")
}
