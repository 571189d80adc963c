package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AndersonGC/dryfit/internal/app"
	"github.com/AndersonGC/dryfit/internal/config"
	"github.com/AndersonGC/dryfit/internal/logging"
)

// @title DryFit API
// @version 1.0
// @description Coaches assign daily workouts to the students they invited.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logging.New("info", "json").Error(context.Background(), "could not load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			log.Error(context.Background(), "failed to release resources", "error", err)
		}
	}()

	if err := application.Run(ctx); err != nil {
		log.Error(context.Background(), "server error", "error", err)
		return
	}
	log.Info(context.Background(), "server exiting")
}
