package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"datachat/agent"
	"datachat/classify"
	"datachat/config"
	"datachat/database"
	"datachat/llmclient"
	"datachat/web"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	store, err := database.NewPostgresStore(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// --- Ensure Schema Exists ---
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	llm := llmclient.New(cfg, logger)

	remoteIntent, err := classify.NewRemoteIntent(llm, cfg.IntentCacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to initialize remote intent classifier", zap.Error(err))
	}

	router := agent.NewRouter(cfg, llm, remoteIntent, logger)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize cleanup service and start background cleanup routine
	cleanupService := web.NewCleanupService(store, router, logger)
	go web.StartSessionCleanup(ctx, cfg, cleanupService, logger)

	// Initialize web server
	webServer := web.NewServer(router, logger, cfg, store)

	// Start web server
	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting datachat web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
