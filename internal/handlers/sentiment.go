package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Saul-Punybz/radar/internal/providers"
	"github.com/Saul-Punybz/radar/internal/sentiment"
	"github.com/Saul-Punybz/radar/internal/session"
)

const analysisTimeout = 30 * time.Minute

// SentimentHandler runs comment sentiment analyses.
type SentimentHandler struct {
	Classifier sentiment.Classifier
	Defaults   providers.Credentials
	// NewSource builds the comment source for a YouTube key. Nil uses the
	// Data API.
	NewSource   func(apiKey string) sentiment.CommentSource
	VideoURLs   []string
	MaxComments int
}

type sentimentRequest struct {
	VideoURLs []string `json:"video_urls"`
}

// Start handles POST /api/sentiment. The analysis runs in the background;
// GET /api/sentiment returns the report once done.
func (h *SentimentHandler) Start(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req sentimentRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}
	urls := nonBlank(req.VideoURLs)
	if len(urls) == 0 {
		urls = h.VideoURLs
	}
	if len(urls) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "provide at least one video URL"})
		return
	}

	key := s.Credentials(h.Defaults).YouTubeKey
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": sentiment.ErrNoAPIKey.Error()})
		return
	}

	if err := s.BeginAnalysis(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	analyzer := &sentiment.Analyzer{
		Source:      h.source(key),
		Classifier:  h.Classifier,
		MaxComments: h.MaxComments,
	}
	go h.run(analyzer, s, urls)

	writeJSON(w, http.StatusAccepted, map[string]any{"status": "started", "videos": len(urls)})
}

func (h *SentimentHandler) source(key string) sentiment.CommentSource {
	if h.NewSource != nil {
		return h.NewSource(key)
	}
	return sentiment.YouTubeComments{APIKey: key}
}

func (h *SentimentHandler) run(a *sentiment.Analyzer, s *session.Session, urls []string) {
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	rep, err := a.Analyze(ctx, urls)
	if err != nil {
		slog.Warn("sentiment: analysis interrupted", "err", err)
	}
	s.EndAnalysis(rep)
}

// Get handles GET /api/sentiment.
func (h *SentimentHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	rep, running := s.Sentiment()
	writeJSON(w, http.StatusOK, map[string]any{
		"running":    running,
		"report":     rep,
		"video_urls": h.VideoURLs,
	})
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
