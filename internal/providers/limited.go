package providers

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/Saul-Punybz/radar/internal/models"
)

// Limited paces a provider with a token bucket. Search blocks until a token
// is available or ctx is done. A Limited is shared by every session so the
// budget applies to the process, not to one user.
type Limited struct {
	Provider
	limiter *rate.Limiter
}

// NewLimited allows one call per interval with the given burst. A
// non-positive interval disables pacing.
func NewLimited(p Provider, interval time.Duration, burst int) *Limited {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limited{Provider: p, limiter: rate.NewLimiter(limit, burst)}
}

// Search waits for the limiter, then delegates. Keyless or credential-less
// calls that would be skipped by the provider do not consume a token.
func (l *Limited) Search(ctx context.Context, keyword, language string, creds Credentials) ([]models.SearchResult, error) {
	if !creds.Has(l.Platform()) {
		return nil, nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.Provider.Search(ctx, keyword, language, creds)
}
