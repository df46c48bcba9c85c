package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/otomono/jersey-orders-api/config"
	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/routes"
	"github.com/otomono/jersey-orders-api/services"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

// run wires the application and blocks until a signal or a server error.
// Deferred cleanup always runs before main exits.
func run() error {
	log.Println("Starting Jersey Orders API server...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Connect to database, bounded by DB_WAIT_TIMEOUT
	if err := config.ConnectDatabase(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	db := config.GetDB()
	if err := models.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("Database migration completed successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ext, err := services.NewExternals(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize external services: %w", err)
	}
	container := services.NewContainer(db, cfg, ext)
	defer container.Close()

	if err := container.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	router := routes.SetupRouter(cfg, container, routes.AdminAuth(cfg)...)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Server is running on http://localhost:%s", cfg.Port)
	// Live streams end when the hub closes, so close it before draining connections
	return runServer(ctx, srv, container.Hub.Close)
}

// runServer serves until ctx is done, then calls beforeShutdown and drains
// connections. A listen failure is returned instead of exiting.
func runServer(ctx context.Context, srv *http.Server, beforeShutdown func()) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	if beforeShutdown != nil {
		beforeShutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
