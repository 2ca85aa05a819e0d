// Command worker runs the headless radar monitor. It periodically scans the
// keyword table on disk across the configured platforms and archives each
// run as a snapshot in object storage.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Saul-Punybz/radar/internal/config"
	"github.com/Saul-Punybz/radar/internal/export"
	"github.com/Saul-Punybz/radar/internal/logging"
	"github.com/Saul-Punybz/radar/internal/monitor"
	"github.com/Saul-Punybz/radar/internal/providers"
	"github.com/Saul-Punybz/radar/internal/storage"
)

const scanJobTimeout = 3 * time.Hour

func main() {
	cfg := config.Load()

	// Structured JSON logging.
	_, closer, err := logging.Setup(cfg.Log, logging.JSON)
	if err != nil {
		slog.Error("worker: logging setup failed", "err", err)
		os.Exit(1)
	}
	defer closer.Close()

	slog.Info("worker: starting radar worker")

	// Create a root context that is cancelled on shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageClient, err := storage.NewClient(ctx, cfg.S3)
	if err != nil {
		slog.Error("worker: storage client creation failed", "err", err)
		os.Exit(1)
	}

	deps := monitor.Deps{
		Providers:   providers.Build(cfg.Providers),
		Credentials: providers.DefaultCredentials(cfg.Providers),
	}
	if storageClient.Configured() {
		deps.Archive = func(ctx context.Context, rows []export.Row) (string, error) {
			meta, err := storageClient.StoreSnapshot(ctx, "worker", rows)
			if err != nil {
				return "", err
			}
			return meta.Prefix, nil
		}
	}

	runner := &monitor.Runner{Config: cfg, Deps: deps}
	runScan := func(reason string) {
		jobCtx, jobCancel := context.WithTimeout(ctx, scanJobTimeout)
		defer jobCancel()

		if _, _, err := runner.RunOnce(jobCtx, reason); err != nil {
			slog.Error("worker: scheduled scan failed", "reason", reason, "err", err)
		}
	}

	// Track in-flight jobs for graceful shutdown.
	var wg sync.WaitGroup

	// Set up cron scheduler (standard 5-field cron expressions). The runner
	// skips a tick while the previous scan is still going.
	c := cron.New()

	_, err = c.AddFunc(cfg.Worker.Schedule, func() {
		wg.Add(1)
		defer wg.Done()
		runScan("cron")
	})
	if err != nil {
		slog.Error("worker: add scan cron", "schedule", cfg.Worker.Schedule, "err", err)
		os.Exit(1)
	}

	c.Start()
	slog.Info("worker: cron scheduler started",
		"jobs", len(c.Entries()),
		"schedule", cfg.Worker.Schedule,
	)

	// Run an initial scan on startup so we don't wait for the first tick.
	wg.Add(1)
	go func() {
		defer wg.Done()

		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			return
		}
		runScan("startup")
	}()

	// ── Graceful Shutdown ──────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	slog.Info("worker: received shutdown signal", "signal", sig.String())

	slog.Info("worker: stopping cron scheduler")
	cronCtx := c.Stop()

	// Cancel the root context to signal all in-flight jobs to stop.
	cancel()

	select {
	case <-cronCtx.Done():
		slog.Info("worker: cron scheduler stopped")
	case <-time.After(30 * time.Second):
		slog.Warn("worker: cron scheduler stop timed out")
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("worker: all in-flight jobs complete")
	case <-time.After(60 * time.Second):
		slog.Warn("worker: timed out waiting for in-flight jobs")
	}

	slog.Info("worker: shutdown complete")
}
