package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Saul-Punybz/radar/internal/models"
	"github.com/Saul-Punybz/radar/internal/providers"
)

// SessionHandler serves the session summary and credential overrides.
type SessionHandler struct {
	// Defaults are the server-configured credentials.
	Defaults         providers.Credentials
	DefaultPlatforms []models.Platform
	TranslateTarget  string
}

type credentialStatus struct {
	Set    bool   `json:"set"`
	Source string `json:"source,omitempty"`
}

func credStatus(override, fallback string) credentialStatus {
	switch {
	case override != "":
		return credentialStatus{Set: true, Source: "session"}
	case fallback != "":
		return credentialStatus{Set: true, Source: "server"}
	}
	return credentialStatus{}
}

func (h *SessionHandler) credentials(o providers.Credentials) map[string]credentialStatus {
	return map[string]credentialStatus{
		"youtube": credStatus(o.YouTubeKey, h.Defaults.YouTubeKey),
		"news":    credStatus(o.NewsKey, h.Defaults.NewsKey),
		"x":       credStatus(o.XBearerToken, h.Defaults.XBearerToken),
	}
}

// GetSession handles GET /api/session. Secrets are reported as set or
// unset, never echoed.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	resp := map[string]any{
		"has_table":         false,
		"results":           s.Results.Len(),
		"credentials":       h.credentials(s.Overrides()),
		"platforms":         models.Platforms,
		"default_platforms": h.DefaultPlatforms,
		"translate_target":  h.TranslateTarget,
		"scan":              s.ScanStatus(),
	}
	if info, ok := s.TableInfo(); ok {
		resp["has_table"] = true
		resp["table"] = info
	}
	writeJSON(w, http.StatusOK, resp)
}

// credentialsRequest fields are optional: a missing field keeps the current
// override and an empty string removes it.
type credentialsRequest struct {
	YouTubeKey   *string `json:"youtube_key"`
	NewsKey      *string `json:"news_key"`
	XBearerToken *string `json:"x_bearer_token"`
}

// PutCredentials handles PUT /api/credentials.
func (h *SessionHandler) PutCredentials(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c := s.Overrides()
	if req.YouTubeKey != nil {
		c.YouTubeKey = strings.TrimSpace(*req.YouTubeKey)
	}
	if req.NewsKey != nil {
		c.NewsKey = strings.TrimSpace(*req.NewsKey)
	}
	if req.XBearerToken != nil {
		c.XBearerToken = strings.TrimSpace(*req.XBearerToken)
	}
	s.SetCredentials(c)

	writeJSON(w, http.StatusOK, map[string]any{"credentials": h.credentials(c)})
}
