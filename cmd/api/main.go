// Command api starts the radar HTTP server and dashboard.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"

	"github.com/Saul-Punybz/radar/internal/config"
	"github.com/Saul-Punybz/radar/internal/handlers"
	"github.com/Saul-Punybz/radar/internal/keywords"
	"github.com/Saul-Punybz/radar/internal/logging"
	"github.com/Saul-Punybz/radar/internal/metrics"
	"github.com/Saul-Punybz/radar/internal/middleware"
	"github.com/Saul-Punybz/radar/internal/models"
	"github.com/Saul-Punybz/radar/internal/providers"
	"github.com/Saul-Punybz/radar/internal/sentiment"
	"github.com/Saul-Punybz/radar/internal/session"
	"github.com/Saul-Punybz/radar/internal/storage"
	"github.com/Saul-Punybz/radar/internal/translate"
	"github.com/Saul-Punybz/radar/internal/web"
)

func main() {
	cfg := config.Load()

	// Structured logging.
	_, closer, err := logging.Setup(cfg.Log, logging.Text)
	if err != nil {
		slog.Error("failed to set up logging", "err", err)
		os.Exit(1)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orientation, err := keywords.ParseOrientation(cfg.Scan.Orientation)
	if err != nil {
		slog.Error("invalid TABLE_ORIENTATION", "err", err)
		os.Exit(1)
	}
	defaultPlatforms, err := models.ParsePlatforms(cfg.Scan.DefaultPlatforms)
	if err != nil {
		slog.Error("invalid SCAN_DEFAULT_PLATFORMS", "err", err)
		os.Exit(1)
	}

	translator, err := translate.FromConfig(cfg.Translate, cfg.Ollama)
	if err != nil {
		slog.Error("failed to configure translation", "err", err)
		os.Exit(1)
	}
	classifier, err := sentiment.FromConfig(cfg.Sentiment, cfg.Ollama)
	if err != nil {
		slog.Error("failed to configure sentiment", "err", err)
		os.Exit(1)
	}

	// S3 storage client (for snapshot archiving).
	storageClient, storageErr := storage.NewClient(ctx, cfg.S3)
	if storageErr != nil {
		slog.Warn("S3 storage not available for archiving", "err", storageErr)
		storageClient = nil
	}

	defaults := providers.DefaultCredentials(cfg.Providers)
	registry := session.NewRegistry()

	// Handlers.
	sessionHandler := &handlers.SessionHandler{
		Defaults:         defaults,
		DefaultPlatforms: defaultPlatforms,
		TranslateTarget:  translator.Target(),
	}
	tableHandler := &handlers.TableHandler{
		Orientation: orientation,
	}
	scanHandler := &handlers.ScanHandler{
		Providers:          providers.Build(cfg.Providers),
		Defaults:           defaults,
		DefaultPlatforms:   defaultPlatforms,
		MaxKeywordsPerCell: cfg.Scan.MaxKeywordsPerCell,
	}
	resultsHandler := &handlers.ResultsHandler{
		Translator: translator,
		Storage:    storageClient,
	}
	sentimentHandler := &handlers.SentimentHandler{
		Classifier: classifier,
		Defaults:   defaults,
		NewSource: func(apiKey string) sentiment.CommentSource {
			return sentiment.YouTubeComments{APIKey: apiKey, Endpoint: cfg.Providers.YouTubeEndpoint}
		},
		VideoURLs:   cfg.Sentiment.VideoURLs,
		MaxComments: cfg.Sentiment.MaxComments,
	}

	// Router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes.
	r.Get("/api/health", handlers.Health)
	r.Handle("/metrics", metrics.Handler())

	// Session-scoped routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Sessions(registry, middleware.CookieOptions{
			Name:   cfg.Session.CookieName,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.Secure,
		}))

		r.Get("/api/session", sessionHandler.GetSession)
		r.Put("/api/credentials", sessionHandler.PutCredentials)

		// Keyword table.
		r.Post("/api/table", tableHandler.Upload)
		r.Get("/api/table", tableHandler.Get)
		r.Get("/api/table/keywords", tableHandler.Keywords)

		// Scans.
		r.Post("/api/scan", scanHandler.StartScan)
		r.Get("/api/scan/progress", scanHandler.Progress)
		r.Delete("/api/scan", scanHandler.CancelScan)

		// Results.
		r.Get("/api/results", resultsHandler.List)
		r.Get("/api/results/stats", resultsHandler.Stats)
		r.Delete("/api/results", resultsHandler.Clear)
		r.Get("/api/results/export", resultsHandler.Export)
		r.Post("/api/results/archive", resultsHandler.Archive)
		r.Post("/api/results/{id}/translate", resultsHandler.Translate)

		// Sentiment.
		r.Post("/api/sentiment", sentimentHandler.Start)
		r.Get("/api/sentiment", sentimentHandler.Get)

		// Dashboard.
		r.Handle("/*", web.Handler())
	})

	// Idle session sweep.
	c := cron.New()
	_, err = c.AddFunc(cfg.Session.SweepSchedule, func() {
		registry.Sweep(cfg.Session.TTL)
	})
	if err != nil {
		slog.Error("invalid SESSION_SWEEP schedule", "schedule", cfg.Session.SweepSchedule, "err", err)
		os.Exit(1)
	}
	c.Start()

	// Start server.
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", addr, "translate_backend", cfg.Translate.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down...")

	<-c.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}

	slog.Info("server stopped")
}
