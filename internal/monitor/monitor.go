// Package monitor runs unattended keyword scans for the worker: it loads
// the keyword table from disk, scans every configured pair into a fresh
// result store and archives the outcome.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Saul-Punybz/radar/internal/agents"
	"github.com/Saul-Punybz/radar/internal/config"
	"github.com/Saul-Punybz/radar/internal/export"
	"github.com/Saul-Punybz/radar/internal/keywords"
	"github.com/Saul-Punybz/radar/internal/models"
	"github.com/Saul-Punybz/radar/internal/providers"
)

// Deps groups the collaborators of a scheduled scan.
type Deps struct {
	Providers   providers.Set
	Credentials providers.Credentials
	// Archive stores the finished rows and returns where they went. Nil
	// disables archiving.
	Archive func(ctx context.Context, rows []export.Row) (string, error)
}

// Outcome summarises one scheduled run.
type Outcome struct {
	Report   agents.Report
	Results  []models.SearchResult
	Location string
}

// LoadTable reads and parses the keyword table at path.
func LoadTable(path string, orientation keywords.Orientation) (*keywords.Table, error) {
	if path == "" {
		return nil, errors.New("monitor: WORKER_TABLE_PATH is not set")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("monitor: open table: %w", err)
	}
	defer f.Close()

	grid, err := keywords.ReadGrid(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}
	table, err := keywords.Parse(grid, orientation)
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}
	return table, nil
}

// Run performs one scheduled scan. Empty language or series lists in cfg
// select every label of the table. The snapshot is archived when
// deps.Archive is set and the scan produced results.
func Run(ctx context.Context, cfg config.Config, deps Deps) (Outcome, error) {
	orientation, err := keywords.ParseOrientation(cfg.Scan.Orientation)
	if err != nil {
		return Outcome{}, fmt.Errorf("monitor: %w", err)
	}
	table, err := LoadTable(cfg.Worker.TablePath, orientation)
	if err != nil {
		return Outcome{}, err
	}
	platforms, err := models.ParsePlatforms(cfg.Worker.Platforms)
	if err != nil {
		return Outcome{}, fmt.Errorf("monitor: %w", err)
	}

	languages := cfg.Worker.Languages
	if len(languages) == 0 {
		languages = table.Languages()
	}
	series := cfg.Worker.Series
	if len(series) == 0 {
		series = table.Series()
	}

	slog.Info("monitor: scan starting",
		"languages", len(languages),
		"series", len(series),
		"platforms", len(platforms),
	)

	store := models.NewResultStore()
	report, err := agents.RunScan(ctx, agents.Deps{
		Providers:          deps.Providers,
		MaxKeywordsPerCell: cfg.Scan.MaxKeywordsPerCell,
	}, agents.Request{
		Table:       table,
		Languages:   languages,
		Series:      series,
		Platforms:   platforms,
		Credentials: deps.Credentials,
	}, store, nil)
	out := Outcome{Report: report, Results: store.All()}
	if err != nil {
		return out, fmt.Errorf("monitor: %w", err)
	}

	slog.Info("monitor: scan complete",
		"keywords", report.Keywords,
		"calls", report.Calls,
		"failures", report.Failures,
		"results", report.Results,
		"duration", report.Duration,
	)

	if deps.Archive != nil && len(out.Results) > 0 {
		loc, err := deps.Archive(ctx, export.Rows(out.Results, nil))
		if err != nil {
			slog.Error("monitor: archive failed", "err", err)
		} else {
			out.Location = loc
			slog.Info("monitor: snapshot archived", "prefix", loc)
		}
	}
	return out, nil
}

// Runner serialises scheduled runs. A run requested while another is still
// going is skipped.
type Runner struct {
	Config config.Config
	Deps   Deps

	mu sync.Mutex
}

// RunOnce performs a scan unless one is already in progress. ran reports
// whether a scan took place.
func (r *Runner) RunOnce(ctx context.Context, reason string) (out Outcome, ran bool, err error) {
	if !r.mu.TryLock() {
		slog.Warn("monitor: previous scan still running, skipping", "reason", reason)
		return Outcome{}, false, nil
	}
	defer r.mu.Unlock()

	slog.Info("monitor: scan triggered", "reason", reason)
	out, err = Run(ctx, r.Config, r.Deps)
	return out, true, err
}
