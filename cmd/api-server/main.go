package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"yatube/internal/config"
	"yatube/internal/http-api/server"
	"yatube/internal/logger"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	log, err := logger.NewLogger(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Yatube",
		zap.String("env", cfg.GoEnv),
		zap.String("addr", cfg.Addr()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx, cfg, log); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}
}
