package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatherly/api/internal/config"
	"github.com/gatherly/api/internal/connect"
	"github.com/gatherly/api/internal/container"
	"github.com/gatherly/api/internal/routes"
	"github.com/gatherly/api/internal/search"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	logger.Info("Starting Gatherly API server", "environment", cfg.Environment)

	cld, err := connect.CloudinaryCredentials()
	if err != nil {
		logger.Error("Failed to connect to Cloudinary", "error", err)
		os.Exit(1)
	}
	connect.Cld = cld

	mongoClient, err := connect.MongoDBConnect()
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully")

	// The embedding model is process-wide state: one normalizer, one client,
	// shared by every request for the lifetime of the process.
	normalizer, err := search.NewNormalizer()
	if err != nil {
		logger.Error("Failed to initialize text normalizer", "error", err)
		os.Exit(1)
	}
	embedder := search.NewModelEmbedder(cfg.EmbeddingURL, cfg.ModelAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim, normalizer)

	warmupCtx, cancelWarmup := context.WithTimeout(context.Background(), 30*time.Second)
	if err := embedder.Warmup(warmupCtx); err != nil {
		cancelWarmup()
		logger.Error("Embedding model warmup failed", "error", err)
		os.Exit(1)
	}
	cancelWarmup()
	logger.Info("Embedding model ready", "model", cfg.EmbeddingModel, "dim", cfg.EmbeddingDim)

	// Initialize dependency container
	appContainer := container.NewContainer(logger, cfg, cld, mongoClient, embedder)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := appContainer.EventsRepo.EnsureEventIndexes(indexCtx); err != nil {
		cancelIndex()
		logger.Error("Failed to ensure event indexes", "error", err)
		os.Exit(1)
	}
	cancelIndex()

	// Setup routes
	router := routes.SetupRoutes(appContainer)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := connect.MongoDBDisconnect(); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
