/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the PTO tracker server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment, flags override)
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Start the accrual scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PTO_PORT)
  -db      SQLite database path (overrides PTO_DB_PATH)
           Use ":memory:" for an in-memory database
  -seed    Load the demo dataset on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the accrual scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database and demo data
  ./server -db="./data/pto.db" -seed

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment configuration
  - store/sqlite/sqlite.go: Database implementation
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

	"github.com/sirupsen/logrus"

	"github.com/warp/pto-tracker/api"
	"github.com/warp/pto-tracker/config"
	"github.com/warp/pto-tracker/store/sqlite"
)

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	// Flags override environment
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	seed := flag.Bool("seed", false, "load demo data on startup")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	handler := api.NewHandler(store, api.Options{
		AllowBalanceOverride: cfg.AllowBalanceOverride,
		HoursPerDay:          cfg.HoursPerDay,
	})
	handler.Log = log

	if *seed {
		summary, err := api.Seed(context.Background(), store, handler.Lifecycle)
		if err != nil {
			log.WithError(err).Fatal("failed to seed demo data")
		}
		log.WithFields(logrus.Fields{
			"holidays":  summary.Holidays,
			"employees": summary.Employees,
			"requests":  summary.Requests,
		}).Info("demo data loaded")
	}

	scheduler := api.NewAccrualScheduler(store, handler.Lifecycle, cfg.MonthlyAccrualHours)
	scheduler.Log = log
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

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
