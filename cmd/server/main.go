package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shelfscan/internal/config"
	"shelfscan/internal/email/noop"
	"shelfscan/internal/email/ses"
	"shelfscan/internal/extract"
	"shelfscan/internal/extract/gemini"
	"shelfscan/internal/handler"
	"shelfscan/internal/pipeline"
	"shelfscan/internal/port"
	"shelfscan/internal/repository/postgres"
	"shelfscan/internal/router"
	"shelfscan/internal/service"
	s3storage "shelfscan/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	productRepo := postgres.NewProductRepo(db)
	scanRepo := postgres.NewScanRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize extraction pipeline
	extractor := gemini.NewClient(&cfg.Extractor)
	controller := extract.NewController(extractor, cfg.Extractor.MaxAttempts, cfg.Extractor.BackoffBase())
	pipe := pipeline.New(controller)

	// Initialize alert sender
	var alerts port.AlertSender
	switch cfg.Email.Provider {
	case "ses":
		alerts, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.ReviewerTo, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		alerts = noop.NewNoopSender()
	}

	// Initialize services
	scanSvc := service.NewScanService(scanRepo, productRepo, s3Client, alerts, pipe, &cfg.S3)

	// Initialize handlers
	scanH := handler.NewScanHandler(scanSvc)
	productH := handler.NewProductHandler(productRepo)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, scanH, productH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the scan queue worker
	worker := service.NewScanQueueWorker(scanRepo, scanSvc, service.ScanQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	<-workerDone

	return nil
}
