// Package main is the entry point for the rental cleaning scheduler server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rental-cleaning-manager/backend/internal/api"
	"github.com/rental-cleaning-manager/backend/internal/calendar"
	"github.com/rental-cleaning-manager/backend/internal/storage"
	"github.com/rental-cleaning-manager/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// Parse command-line flags
	addr := flag.String("addr", ":8090", "HTTP server address")
	dataDir := flag.String("data", "/data", "Data directory for SQLite database")
	staticDir := flag.String("static", "./static", "Directory for static frontend files")
	defaultSyncIntervalMin := flag.Int("sync-interval", 15, "Default feed sync interval in minutes")
	fetchTimeoutSec := flag.Int("fetch-timeout", 30, "Feed fetch timeout in seconds")
	preserveJobStatus := flag.Bool("preserve-job-status", false, "Keep operator-set job statuses when a booking changes")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(*addr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	// Allow overriding version via environment (e.g., injected by container build/runtime)
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting rental cleaning scheduler (version: %s)...", version)

	// Initialize database
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", *dataDir, err)
	}
	dbPath := *dataDir + "/cleaning-manager.db"
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	propertyRepo := storage.NewPropertyRepository(db)
	bookingRepo := storage.NewBookingRepository(db)
	jobRepo := storage.NewCleaningJobRepository(db)
	syncLogRepo := storage.NewSyncLogRepository(db)

	// Initialize sync service
	feed := calendar.NewICalFeed(time.Duration(*fetchTimeoutSec) * time.Second)
	syncService := calendar.NewSyncService(
		propertyRepo,
		bookingRepo,
		jobRepo,
		syncLogRepo,
		feed,
		*preserveJobStatus,
	)

	// Initialize and start the scheduler
	scheduler := calendar.NewScheduler(syncService, propertyRepo, hub, *defaultSyncIntervalMin)
	if err := scheduler.Start(context.Background()); err != nil {
		log.Printf("Warning: Failed to start feed scheduler: %v", err)
	}

	// Initialize HTTP router
	repos := api.Repositories{
		Properties: propertyRepo,
		Bookings:   bookingRepo,
		Jobs:       jobRepo,
		SyncLog:    syncLogRepo,
	}
	router := api.NewRouter(db, repos, hub, *staticDir, syncService, scheduler)

	// Create HTTP server
	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	scheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
