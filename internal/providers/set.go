package providers

import (
	"github.com/Saul-Punybz/radar/internal/config"
	"github.com/Saul-Punybz/radar/internal/models"
)

// Set maps each platform to its (rate-limited) provider.
type Set map[models.Platform]Provider

// Build constructs every provider from configuration, each wrapped in its
// own rate limiter.
func Build(cfg config.ProvidersConfig) Set {
	opts := func(base string) Options {
		return Options{BaseURL: base, Timeout: cfg.Timeout, MaxResults: cfg.MaxResults}
	}
	return Set{
		models.PlatformYouTube:    NewLimited(NewYouTube(opts(cfg.YouTubeEndpoint)), cfg.YouTubeInterval, cfg.Burst),
		models.PlatformNews:       NewLimited(NewNews(opts(cfg.NewsBaseURL)), cfg.NewsInterval, cfg.Burst),
		models.PlatformX:          NewLimited(NewX(opts(cfg.XBaseURL)), cfg.XInterval, cfg.Burst),
		models.PlatformGoogleNews: NewLimited(NewGoogleNews(opts(cfg.GoogleNewsBaseURL)), cfg.GoogleNewsInterval, cfg.Burst),
	}
}

// DefaultCredentials returns the server-wide credentials from configuration.
func DefaultCredentials(cfg config.ProvidersConfig) Credentials {
	return Credentials{
		YouTubeKey:   cfg.YouTubeKey,
		NewsKey:      cfg.NewsKey,
		XBearerToken: cfg.XBearerToken,
	}
}
