// Package providers implements the external search collaborators: YouTube,
// NewsAPI, the X recent-search API and Google News RSS. Each provider makes
// exactly one outbound request per Search and never retries; pacing is the
// caller's job (see Limited).
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Saul-Punybz/radar/internal/models"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxResults = 10
	userAgent         = "Radar/1.0 (+https://github.com/Saul-Punybz/radar)"
)

// Credentials carries the optional per-provider secrets. A provider whose
// credential is empty returns no results and makes no request.
type Credentials struct {
	YouTubeKey   string
	NewsKey      string
	XBearerToken string
}

// Has reports whether the credential needed by platform is present.
// Keyless platforms always report true.
func (c Credentials) Has(p models.Platform) bool {
	switch p {
	case models.PlatformYouTube:
		return c.YouTubeKey != ""
	case models.PlatformNews:
		return c.NewsKey != ""
	case models.PlatformX:
		return c.XBearerToken != ""
	case models.PlatformGoogleNews:
		return true
	}
	return false
}

// Merge returns c with empty fields filled from fallback.
func (c Credentials) Merge(fallback Credentials) Credentials {
	if c.YouTubeKey == "" {
		c.YouTubeKey = fallback.YouTubeKey
	}
	if c.NewsKey == "" {
		c.NewsKey = fallback.NewsKey
	}
	if c.XBearerToken == "" {
		c.XBearerToken = fallback.XBearerToken
	}
	return c
}

// Provider searches one platform for a keyword in a language.
type Provider interface {
	Platform() models.Platform
	Search(ctx context.Context, keyword, language string, creds Credentials) ([]models.SearchResult, error)
}

// Options configures the HTTP-backed providers. Zero values pick defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxResults int
	HTTPClient *http.Client
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}

func (o Options) maxResults() int {
	if o.MaxResults > 0 {
		return o.MaxResults
	}
	return defaultMaxResults
}

func (o Options) restClient(defaultBase string) *resty.Client {
	var c *resty.Client
	if o.HTTPClient != nil {
		c = resty.NewWithClient(o.HTTPClient)
	} else {
		c = resty.New()
	}
	base := o.BaseURL
	if base == "" {
		base = defaultBase
	}
	return c.SetBaseURL(base).
		SetTimeout(o.timeout()).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
}

// ProviderError is a recoverable failure of one provider call.
type ProviderError struct {
	Platform   models.Platform
	Keyword    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s search %q: status %d: %v", e.Platform, e.Keyword, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s search %q: %v", e.Platform, e.Keyword, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err is, or wraps, a *ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// quoted wraps a keyword in double quotes for exact-phrase search.
func quoted(keyword string) string {
	return `"` + keyword + `"`
}

// parseTime parses an RFC 3339 timestamp, falling back to now.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
