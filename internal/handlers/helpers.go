package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Saul-Punybz/radar/internal/middleware"
	"github.com/Saul-Punybz/radar/internal/session"
)

// writeJSON encodes v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json", "err", err)
	}
}

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// currentSession returns the request's session or writes a 500 when the
// session middleware is missing from the chain.
func currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		slog.Error("handlers: no session in request context", "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, false
	}
	return s, true
}

// queryList collects a repeatable query parameter. Comma-separated values
// are split as well, so ?platform=X,News equals ?platform=X&platform=News.
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
