// Package agents runs keyword scans: for every selected language, series
// and keyword it asks each selected provider for matches and appends them to
// the session's result store. Calls are issued one at a time; pacing comes
// from the providers' rate limiters.
package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Saul-Punybz/radar/internal/keywords"
	"github.com/Saul-Punybz/radar/internal/metrics"
	"github.com/Saul-Punybz/radar/internal/models"
	"github.com/Saul-Punybz/radar/internal/providers"
)

const scanTimeout = 2 * time.Hour

var (
	// ErrEmptySelection means no language or no series was selected.
	ErrEmptySelection = errors.New("choose at least one series and one language")
	// ErrNoCredentials means none of the selected platforms can be searched.
	ErrNoCredentials = errors.New("enter at least one API key for the selected platforms")
	// ErrNoTable means no keyword table has been uploaded.
	ErrNoTable = errors.New("upload a keyword table first")
)

// Deps groups what a scan needs besides the request itself.
type Deps struct {
	Providers providers.Set
	// MaxKeywordsPerCell limits how many keywords of each cell are searched.
	// Zero means all of them.
	MaxKeywordsPerCell int
}

// Request selects what to scan.
type Request struct {
	Table       *keywords.Table
	Languages   []string
	Series      []string
	Platforms   []models.Platform
	Credentials providers.Credentials
}

// Progress is reported after every keyword.
type Progress struct {
	Current  int    `json:"current"`
	Total    int    `json:"total"`
	Keyword  string `json:"keyword"`
	Language string `json:"language"`
	Series   string `json:"series"`
}

// Report summarises a finished (or interrupted) scan.
type Report struct {
	Keywords  int           `json:"keywords"`
	Calls     int           `json:"calls"`
	Failures  int           `json:"failures"`
	Results   int           `json:"results"`
	Skipped   []string      `json:"skipped,omitempty"`
	Duration  time.Duration `json:"duration"`
	Platforms []string      `json:"platforms"`
}

type job struct {
	language string
	series   string
	keyword  string
}

// RunScan executes req sequentially and appends matches to store. Provider
// failures are logged and skipped. If ctx ends, the partial report is
// returned along with the context error.
func RunScan(ctx context.Context, deps Deps, req Request, store *models.ResultStore, onProgress func(Progress)) (Report, error) {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	if req.Table == nil {
		return Report{}, ErrNoTable
	}
	languages := dedupe(req.Languages)
	series := dedupe(req.Series)
	if len(languages) == 0 || len(series) == 0 {
		return Report{}, ErrEmptySelection
	}

	var active []providers.Provider
	var names []string
	for _, p := range dedupePlatforms(req.Platforms) {
		prov, ok := deps.Providers[p]
		if !ok || !req.Credentials.Has(p) {
			continue
		}
		active = append(active, prov)
		names = append(names, string(p))
	}
	if len(active) == 0 {
		return Report{}, ErrNoCredentials
	}

	report := Report{Platforms: names}
	jobs := plan(req.Table, languages, series, deps.MaxKeywordsPerCell, &report)
	report.Keywords = len(jobs)

	slog.Info("scan: starting",
		"languages", len(languages),
		"series", len(series),
		"keywords", len(jobs),
		"platforms", names,
	)
	start := time.Now()

	var err error
	processed := 0
	for i, j := range jobs {
		if err = ctx.Err(); err != nil {
			break
		}
		if onProgress != nil {
			onProgress(Progress{Current: i, Total: len(jobs), Keyword: j.keyword, Language: j.language, Series: j.series})
		}

		for _, prov := range active {
			if err = ctx.Err(); err != nil {
				break
			}
			n, callErr := searchOne(ctx, prov, j, req.Credentials, store)
			report.Calls++
			report.Results += n
			if callErr != nil {
				if ctx.Err() != nil {
					err = ctx.Err()
					break
				}
				report.Failures++
				slog.Warn("scan: provider call failed",
					"platform", prov.Platform(),
					"keyword", j.keyword,
					"language", j.language,
					"err", callErr,
				)
			}
		}
		if err != nil {
			break
		}
		processed++
	}

	if onProgress != nil {
		onProgress(Progress{Current: processed, Total: len(jobs)})
	}

	report.Duration = time.Since(start).Round(time.Millisecond)
	metrics.ObserveScan(err)
	if err != nil {
		slog.Warn("scan: interrupted", "calls", report.Calls, "results", report.Results, "err", err)
		return report, fmt.Errorf("scan: %w", err)
	}

	slog.Info("scan: complete",
		"keywords", report.Keywords,
		"calls", report.Calls,
		"failures", report.Failures,
		"results", report.Results,
		"duration", report.Duration,
	)
	return report, nil
}

// plan expands the selection into keyword jobs in language, series,
// keyword order. Labels missing from the table are recorded and skipped.
func plan(table *keywords.Table, languages, series []string, maxPerCell int, report *Report) []job {
	for _, l := range languages {
		if !table.HasLanguage(l) {
			report.Skipped = append(report.Skipped, "language "+l)
		}
	}
	for _, s := range series {
		if !table.HasSeries(s) {
			report.Skipped = append(report.Skipped, "series "+s)
		}
	}

	var jobs []job
	for _, l := range languages {
		for _, s := range series {
			kws := table.KeywordsFor(l, s)
			if maxPerCell > 0 && len(kws) > maxPerCell {
				kws = kws[:maxPerCell]
			}
			for _, kw := range kws {
				jobs = append(jobs, job{language: strings.ToLower(l), series: s, keyword: kw})
			}
		}
	}
	return jobs
}

func searchOne(ctx context.Context, prov providers.Provider, j job, creds providers.Credentials, store *models.ResultStore) (int, error) {
	start := time.Now()
	results, err := prov.Search(ctx, j.keyword, j.language, creds)
	metrics.ObserveProviderCall(string(prov.Platform()), len(results), err, time.Since(start))
	if err != nil {
		return 0, err
	}
	kept := results[:0]
	for _, r := range results {
		if isNoise(r) {
			continue
		}
		r.Series = j.series
		if r.Language == "" {
			r.Language = j.language
		}
		kept = append(kept, r)
	}
	store.Append(kept...)
	return len(kept), nil
}

func dedupe(values []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func dedupePlatforms(ps []models.Platform) []models.Platform {
	var out []models.Platform
	seen := make(map[models.Platform]bool)
	for _, p := range ps {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
