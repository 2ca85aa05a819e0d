// Package middleware provides HTTP middleware for the Radar API.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Saul-Punybz/radar/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// CookieOptions configures the session cookie.
type CookieOptions struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Sessions returns middleware that resolves the session cookie against reg
// and injects the session into the request context. Visitors without a
// known session get a new one and a fresh cookie.
func Sessions(reg *session.Registry, opts CookieOptions) func(http.Handler) http.Handler {
	if opts.Name == "" {
		opts.Name = "radar_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if cookie, err := r.Cookie(opts.Name); err == nil {
				sess, _ = reg.Get(cookie.Value)
			}

			if sess == nil {
				created, err := reg.Create()
				if err != nil {
					slog.Error("session: create failed", "err", err)
					http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
					return
				}
				sess = created
			}

			// Refresh the cookie so its expiry follows activity.
			http.SetCookie(w, &http.Cookie{
				Name:     opts.Name,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(opts.TTL.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session injected by Sessions, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionContextKey).(*session.Session)
	return s
}

// WithSession returns ctx carrying s. Handlers under test use it in place of
// the cookie middleware.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}
