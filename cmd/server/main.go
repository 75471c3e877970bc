/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Smart Money server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (environment / .env) and parse flags
  2. Initialize the SQLite store
  3. Wire the Gemini client (optional) and the lifecycle manager
  4. Start the reconciliation scheduler (runs one reconcile immediately)
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides SMARTMONEY_PORT)
  -db      SQLite database path (overrides SMARTMONEY_DB)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler (waits for a running reconciliation)
  2. Stop accepting new connections, drain active requests (30s timeout)
  3. Close the database
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tranvietnhattu/SMARTMONEY/api"
	"github.com/Tranvietnhattu/SMARTMONEY/config"
	"github.com/Tranvietnhattu/SMARTMONEY/cycle"
	"github.com/Tranvietnhattu/SMARTMONEY/gemini"
	"github.com/Tranvietnhattu/SMARTMONEY/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	log := config.NewLogger(cfg)

	// Store
	store, err := sqlite.New(*dbPath, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Enrichment collaborator (optional)
	var ai *gemini.Client
	if cfg.GeminiKey != "" {
		ai, err = gemini.New(cfg.GeminiKey, cfg.GeminiModel, log)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize gemini client")
		}
	} else {
		log.Warn("GEMINI_API_KEY not set, AI features disabled; cycles will archive without reports")
	}

	// Lifecycle manager. ai may be a typed nil; keep the interface nil.
	var reporter cycle.Reporter
	if ai != nil {
		reporter = ai
	}
	manager := cycle.NewManager(store, reporter, log)

	// Reconciliation scheduler
	scheduler, err := api.NewScheduler(manager, cfg.CronSpec, log)
	if err != nil {
		log.WithError(err).Fatal("invalid reconcile cron spec")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	handler := api.NewHandler(store, manager, ai, log)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // AI-backed endpoints can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}
