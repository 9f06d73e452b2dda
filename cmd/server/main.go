package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/openriskhq/decisionguide/internal/api"
	"github.com/openriskhq/decisionguide/internal/config"
	"github.com/openriskhq/decisionguide/internal/history"
	"github.com/openriskhq/decisionguide/internal/session"
	"github.com/openriskhq/decisionguide/internal/tree"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("could not load .env file", "error", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the decision tree catalog.
	registry, err := tree.LoadDir(cfg.TreeDir, log)
	if err != nil {
		log.Error("failed to load trees", "dir", cfg.TreeDir, "error", err)
		os.Exit(1)
	}
	if registry.Len() == 0 {
		log.Warn("no valid trees loaded", "dir", cfg.TreeDir)
	}

	// Open the history store.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Error("failed to create data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	hist, err := history.Open(cfg.HistoryPath(), cfg.MaxHistoryEntries)
	if err != nil {
		log.Error("failed to open history store", "path", cfg.HistoryPath(), "error", err)
		os.Exit(1)
	}

	// Session store with idle eviction.
	sessions := session.NewStore(cfg.SessionTimeout)
	go func() {
		ticker := time.NewTicker(cfg.SessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.Cleanup()
			}
		}
	}()

	// Initialize HTTP server.
	srv := api.NewServer(registry, sessions, hist, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. ListenAndServe returns as soon as Shutdown starts, so
	// main waits on done until in-flight requests drain and the store is closed.
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		hist.Close()
	}()

	log.Info("starting decisionguide", "port", cfg.Port, "trees", registry.Len())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
