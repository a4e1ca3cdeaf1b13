/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift scheduling engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load optional YAML config
  2. Initialize SQLite store
  3. Wire the engine: ledger, classifier, workflow, planner, notifier
  4. Configure HTTP router, start reminder scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for an in-memory database
  -config  YAML configuration file (optional)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the reminder scheduler, close the database
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/shifts.db"

  # Run with config file
  ./server -config=config.yaml

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: YAML configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firehall/shift-engine/api"
	"github.com/firehall/shift-engine/config"
	"github.com/firehall/shift-engine/schedule"
	"github.com/firehall/shift-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	// Configuration: file if given, defaults otherwise, flags win
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire the engine
	bus := schedule.NewBus()
	ledger := schedule.NewLedger(store.Assignments(), store.GuardTypes(), bus,
		schedule.LedgerConfig{RejectOverlapping: cfg.Schedule.RejectOverlapping})
	classifier := schedule.NewClassifier(store.Assignments(), store.GuardTypes(), bus,
		cfg.Schedule.CoverageCacheTTL)
	notifier := schedule.NewDispatcher(store.Notifications())
	notifier.SubscribeAssignments(bus, store.GuardTypes())
	workflow := schedule.NewWorkflow(ledger, store.Requests(), notifier, bus)
	registry := schedule.NewRegistry(store.Availability())
	workload := schedule.NewWorkloadCalculator(store.Assignments(), store.GuardTypes())
	planner := &schedule.GreedyPlanner{
		Assignments:  store.Assignments(),
		GuardTypes:   store.GuardTypes(),
		Employees:    store.Employees(),
		Availability: store.Availability(),
		Workload:     workload,
	}
	search := &schedule.ReplacementSearch{
		Planner:  planner,
		Requests: store.Requests(),
		Notifier: notifier,
	}

	handler := &api.Handler{
		GuardTypes: store.GuardTypes(),
		Employees:  store.Employees(),
		Ledger:     ledger,
		Expander:   &schedule.Expander{Ledger: ledger},
		Classifier: classifier,
		Workflow:   workflow,
		Registry:   registry,
		Workload:   workload,
		Notifier:   notifier,
		Planner:    planner,
		Search:     search,
	}

	router := api.NewRouter(handler, cfg.Server)

	reminder := api.NewReminderScheduler(classifier, store.GuardTypes(), notifier, cfg.Reminder)
	reminder.Start()
	defer reminder.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Server.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
