package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Saul-Punybz/radar/internal/agents"
	"github.com/Saul-Punybz/radar/internal/models"
	"github.com/Saul-Punybz/radar/internal/providers"
	"github.com/Saul-Punybz/radar/internal/session"
)

// defaultSelection is how many languages and series a scan covers when the
// request names none.
const defaultSelection = 3

// ScanHandler starts and reports keyword scans.
type ScanHandler struct {
	Providers          providers.Set
	Defaults           providers.Credentials
	DefaultPlatforms   []models.Platform
	MaxKeywordsPerCell int
}

type scanRequest struct {
	Languages []string `json:"languages"`
	Series    []string `json:"series"`
	Platforms []string `json:"platforms"`
}

// StartScan handles POST /api/scan. The scan runs in the background; poll
// GET /api/scan/progress for its state.
func (h *ScanHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req scanRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	table := s.Table()
	if table == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": agents.ErrNoTable.Error()})
		return
	}

	platforms := h.DefaultPlatforms
	if len(req.Platforms) > 0 {
		var err error
		if platforms, err = models.ParsePlatforms(req.Platforms); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	languages := req.Languages
	if len(languages) == 0 {
		languages = firstN(table.Languages(), defaultSelection)
	}
	series := req.Series
	if len(series) == 0 {
		series = firstN(table.Series(), defaultSelection)
	}

	scan := agents.Request{
		Table:       table,
		Languages:   languages,
		Series:      series,
		Platforms:   platforms,
		Credentials: s.Credentials(h.Defaults),
	}
	if !hasUsablePlatform(scan) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": agents.ErrNoCredentials.Error()})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.BeginScan(cancel); err != nil {
		cancel()
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	go h.run(ctx, s, scan)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":    "started",
		"languages": languages,
		"series":    series,
		"platforms": platforms,
	})
}

func (h *ScanHandler) run(ctx context.Context, s *session.Session, req agents.Request) {
	deps := agents.Deps{Providers: h.Providers, MaxKeywordsPerCell: h.MaxKeywordsPerCell}
	report, err := agents.RunScan(ctx, deps, req, s.Results, s.SetProgress)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("scan: finished with error", "err", err)
	}
	s.EndScan(report, err)
}

func hasUsablePlatform(req agents.Request) bool {
	for _, p := range req.Platforms {
		if req.Credentials.Has(p) {
			return true
		}
	}
	return false
}

// Progress handles GET /api/scan/progress.
func (h *ScanHandler) Progress(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.ScanStatus())
}

// CancelScan handles DELETE /api/scan.
func (h *ScanHandler) CancelScan(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	if !s.CancelScan() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no scan is running"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}
