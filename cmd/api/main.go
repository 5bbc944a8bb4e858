package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dmassey-dev/crucible/internal/config"
	"github.com/dmassey-dev/crucible/internal/handlers"
	"github.com/dmassey-dev/crucible/internal/logger"
	"github.com/dmassey-dev/crucible/internal/middleware"
	"github.com/dmassey-dev/crucible/internal/services"
	"github.com/dmassey-dev/crucible/internal/storage"
	"github.com/dmassey-dev/crucible/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Crucible API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"narrator_provider", cfg.NarratorProvider,
		"model_name", cfg.ModelName)

	var narrator services.Narrator
	switch strings.ToLower(cfg.NarratorProvider) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		narrator = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic narrator provider")
	case "mock":
		// Mechanics still resolve; turns get canned prose. Useful for
		// local development without an API key.
		narrator = services.NewMockNarrator()
		log.Info("Using mock narrator provider")
	default:
		log.Error("Invalid narrator provider specified", "provider", cfg.NarratorProvider, "supported", []string{"anthropic", "mock"})
		os.Exit(1)
	}

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := narrator.InitModel(ctx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize narrator model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	ownerID := fmt.Sprintf("api-%s", uuid.New().String()[:8])
	locker := worker.NewEncounterLocker(store.Client(), ownerID)
	processor := worker.NewTurnProcessor(store, narrator, locker, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	encounterHandler := handlers.NewEncounterHandler(store, processor, log)
	mux.Handle("/v1/encounter", encounterHandler)
	mux.Handle("/v1/encounter/", encounterHandler)

	characterHandler := handlers.NewCharacterHandler(store, log)
	mux.Handle("/v1/characters/", characterHandler)

	srdHandler := handlers.NewSRDHandler(store, log)
	mux.Handle("/v1/srd/", srdHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Close storage connection
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
