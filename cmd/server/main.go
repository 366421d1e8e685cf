package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BrainDriveAI/document-processing-service/internal/api"
	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
	"github.com/BrainDriveAI/document-processing-service/internal/config"
	"github.com/BrainDriveAI/document-processing-service/internal/indexstore"
	"github.com/BrainDriveAI/document-processing-service/internal/pipeline"
	"github.com/BrainDriveAI/document-processing-service/internal/token"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := chunking.Deps{Log: log}
	tok, err := token.NewTikToken(cfg.TokenEncoding)
	if err != nil {
		// Token strategies fall back to character estimates without a
		// tokenizer, so this is not fatal.
		log.Warn("tokenizer unavailable, token sizes will be estimated",
			"encoding", cfg.TokenEncoding, "error", err)
	} else {
		deps.Tokenizer = tok
	}

	store := indexstore.NewClient(cfg.IndexStoreURL, cfg.IndexStoreAPIKey)
	if store.Enabled() {
		if err := store.Health(ctx); err != nil {
			log.Warn("index store health check failed", "error", err)
		}
	} else {
		log.Info("index store not configured, running chunking-only")
	}

	orch := pipeline.NewOrchestrator(cfg, store, deps, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// In-flight HTTP requests drain before the job queue closes.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		store.Close()
	}()

	log.Info("starting document processing service", "port", cfg.Port,
		"workers", cfg.WorkerCount, "default_strategy", cfg.DefaultStrategy)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
