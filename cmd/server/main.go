package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/app"
	"github.com/nekogravitycat/servicehub-backend/internal/config"
	"github.com/nekogravitycat/servicehub-backend/internal/db"
	"github.com/nekogravitycat/servicehub-backend/internal/tasks"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer pool.Close()

	// Deferred tasks run through Redis when configured, otherwise in-process
	var scheduler tasks.Scheduler
	if cfg.RedisAddr != "" {
		scheduler = tasks.NewAsynqScheduler(cfg.RedisAddr, cfg.PaymentSettleTimeout)
		log.Printf("task scheduler: asynq at %s", cfg.RedisAddr)
	} else {
		scheduler = tasks.NewLocalScheduler(cfg.PaymentSettleTimeout)
		log.Println("task scheduler: in-process")
	}

	container, err := app.NewContainer(app.Config{
		IsProduction:         cfg.IsProduction,
		ProdOrigins:          cfg.ProdOrigins,
		DBPool:               pool,
		Scheduler:            scheduler,
		JWTSecret:            cfg.JWTSecret,
		JWTTTL:               cfg.JWTAccessTokenTTL,
		BcryptCost:           cfg.BcryptCost,
		StoragePath:          cfg.StoragePath,
		PaymentDelay:         cfg.PaymentDelay,
		PaymentSettleTimeout: cfg.PaymentSettleTimeout,
		PaymentSuccessRate:   cfg.PaymentSuccessRate,
		PaymentSeed:          time.Now().UnixNano(),
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	// Handlers are registered by the container, so start afterwards
	if err := scheduler.Start(); err != nil {
		log.Fatalf("failed to start task scheduler: %v", err)
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		log.Printf("server running on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Println("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	// Drain in-flight settlements and deliveries before the pool closes
	if err := scheduler.Shutdown(shutdownCtx); err != nil {
		log.Printf("task scheduler forced to shutdown: %v", err)
	}

	log.Println("server exited gracefully")
}
