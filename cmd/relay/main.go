// Package main contains the entrypoint for the Telegram relay server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/edgard/tgrelay/internal/config"
	"github.com/edgard/tgrelay/internal/dispatch"
	"github.com/edgard/tgrelay/internal/logger"
	"github.com/edgard/tgrelay/internal/server"
	"github.com/edgard/tgrelay/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, logger, Telegram sender, dispatcher and HTTP server,
// serves until ctx is cancelled, and returns the process exit code.
func run(ctx context.Context) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON())
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON())

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, cfg.Telegram.APIURL, log)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	dispatcher := dispatch.NewDispatcher(telegram.NewSender(tg, log), log)
	srv := server.NewServer(log, cfg.Server, dispatcher)

	log.Info("Starting relay...", "addr", cfg.Server.Addr())
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Relay stopped due to error", "error", err)
		return 1
	}

	log.Info("Relay stopped gracefully.")
	return 0
}
