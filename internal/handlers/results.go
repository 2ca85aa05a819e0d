package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Saul-Punybz/radar/internal/export"
	"github.com/Saul-Punybz/radar/internal/models"
	"github.com/Saul-Punybz/radar/internal/storage"
	"github.com/Saul-Punybz/radar/internal/translate"
)

// ResultsHandler lists, translates, exports and archives session results.
type ResultsHandler struct {
	Translator *translate.Translator
	// Storage may be nil or unconfigured; archiving then answers 503.
	Storage *storage.Client
}

// resultView is a result with its cached translation.
type resultView struct {
	models.SearchResult
	Translation string `json:"translation,omitempty"`
}

// List handles GET /api/results?platform=&language=&series=. Each filter
// is repeatable; an absent filter matches everything.
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	platforms, err := models.ParsePlatforms(queryList(r, "platform"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	results := s.Results.Filter(models.Filter{
		Platforms: platforms,
		Languages: queryList(r, "language"),
		Series:    queryList(r, "series"),
	})

	items := make([]resultView, len(results))
	for i, res := range results {
		items[i].SearchResult = res
		items[i].Translation, _ = s.Results.Translation(res.ID.String())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": items,
		"count":   len(items),
		"total":   s.Results.Len(),
	})
}

// Stats handles GET /api/results/stats.
func (h *ResultsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Results.Stats())
}

// Clear handles DELETE /api/results. Results and translations are dropped
// together.
func (h *ResultsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	s.Results.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Translate handles POST /api/results/{id}/translate. A failed translation
// still answers 200 with the sentinel text and failed=true.
func (h *ResultsHandler) Translate(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid result id"})
		return
	}
	res, ok := s.Results.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "result not found"})
		return
	}

	text := h.Translator.Translate(r.Context(), s.Results, res.Content, id.String())
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"translation": text,
		"target":      h.Translator.Target(),
		"failed":      text == h.Translator.Sentinel(),
	})
}

// Export handles GET /api/results/export?format=csv|json|xlsx. The same
// filters as List apply.
func (h *ResultsHandler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	platforms, err := models.ParsePlatforms(queryList(r, "platform"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows := export.Rows(s.Results.Filter(models.Filter{
		Platforms: platforms,
		Languages: queryList(r, "language"),
		Series:    queryList(r, "series"),
	}), s.Results)

	filename := fmt.Sprintf("radar-results-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := export.Write(w, format, rows); err != nil {
		slog.Error("export results", "format", format, "err", err)
	}
}

// Archive handles POST /api/results/archive.
func (h *ResultsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	if !h.Storage.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "object storage is not configured"})
		return
	}

	meta, err := h.Storage.StoreSnapshot(r.Context(), "dashboard", export.Rows(s.Results.All(), s.Results))
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "object storage is not configured"})
			return
		}
		slog.Error("archive results", "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not archive results"})
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}
