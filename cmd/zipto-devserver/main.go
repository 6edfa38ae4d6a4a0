package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zipto/internal/config"
	"zipto/internal/server"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// Create and initialize server
	srv := server.New(cfg, logger)
	srv.Initialize()

	// Start server
	go func() {
		if err := srv.Start(); err != nil {
			logger.Info().Err(err).Msg("Server stopped")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
}
