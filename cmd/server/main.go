/*
main.go - Application entry point

PURPOSE:
  Starts the envelope budget engine's HTTP command surface. Handles
  configuration, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and environment config
  2. Apply command-line flag overrides
  3. Open the ledger store (SQLite or memory)
  4. Build the posting engine and HTTP router
  5. Serve with graceful shutdown; sweep expired pending selections

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides SQLITE_DB_PATH;
           use ":memory:" for an in-memory database)

ENVIRONMENT:
  PORT, DATA_BACKEND, SQLITE_DB_PATH, BUDGET_CHANNEL_ID, PENDING_TTL,
  KEEP_INCOME_ON_CLEAR, LOG_LEVEL. See config package.
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/envelope-engine/api"
	"github.com/warp/envelope-engine/budget"
	memstore "github.com/warp/envelope-engine/budget/store"
	"github.com/warp/envelope-engine/config"
	"github.com/warp/envelope-engine/logging"
	"github.com/warp/envelope-engine/store/sqlite"
)

func main() {
	// A missing .env is fine; deployed environments set real env vars.
	_ = godotenv.Load()

	cfg := config.Load()

	port := flag.String("port", "", "HTTP server port (overrides PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides SQLITE_DB_PATH)")
	flag.Parse()
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.SQLitePath = *dbPath
	}

	log := logging.New(logging.ParseLevel(cfg.LogLevel), "server")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var store budget.Store
	switch cfg.DataBackend {
	case "memory":
		store = memstore.NewMemory()
	default:
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			log.Error("failed to open database", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
		defer st.Close()
		store = st
	}

	engine := budget.NewEngine(store, budget.EngineOptions{
		PendingTTL:        cfg.PendingTTL,
		KeepIncomeOnClear: cfg.KeepIncomeOnClear,
	})

	handler := api.NewHandler(engine, log.WithComponent("api"), cfg.BudgetChannelID)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Sweep expired pending selections so a long-idle process doesn't
	// accumulate dead entries.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.PendingTTL)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := engine.Pending().CleanExpired(); n > 0 {
					log.Debug("swept expired pending selections", "count", n)
				}
			case <-sweepDone:
				return
			}
		}
	}()

	go func() {
		log.Info("server starting", "addr", server.Addr, "backend", cfg.DataBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	close(sweepDone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
