package service

import (
	"context"
	"log"
	"sync"
	"time"

	"shelfscan/internal/port"
)

// ScanQueueConfig holds settings for the scan queue worker.
type ScanQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
}

// ScanQueueWorker polls for queued scans and dispatches them through the
// extraction pipeline.
type ScanQueueWorker struct {
	scanRepo    port.ScanRepository
	scanService ScanService
	cfg         ScanQueueConfig
	wg          sync.WaitGroup
}

// NewScanQueueWorker creates a new ScanQueueWorker.
func NewScanQueueWorker(scanRepo port.ScanRepository, scanService ScanService, cfg ScanQueueConfig) *ScanQueueWorker {
	return &ScanQueueWorker{
		scanRepo:    scanRepo,
		scanService: scanService,
		cfg:         cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight scan goroutines have finished.
func (w *ScanQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("scanQueueWorker: started (poll=%s, concurrency=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("scanQueueWorker: shutting down, waiting for in-flight scans...")
			w.wg.Wait()
			log.Printf("scanQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			scans, err := w.scanRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll — exit gracefully
					continue
				}
				log.Printf("scanQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range scans {
				scan := scans[i] // copy for goroutine
				scan.Attempts++

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight scans complete even during shutdown.
					scanCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
					defer cancel()

					log.Printf("scanQueueWorker: dispatching scan %s (attempt %d)", scan.ID, scan.Attempts)
					w.scanService.ProcessScan(scanCtx, &scan)
				}()
			}
		}
	}
}
