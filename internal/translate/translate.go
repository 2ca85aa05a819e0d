// Package translate renders result text into the dashboard's target
// language. Translations are cached per session and failures degrade to a
// fixed sentinel string instead of an error.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/Saul-Punybz/radar/internal/metrics"
	"github.com/Saul-Punybz/radar/internal/textutil"
)

const (
	// DefaultSentinel is shown in place of a translation that failed.
	DefaultSentinel = "خطأ في الترجمة"
	// DefaultMaxChars bounds the text sent to a backend.
	DefaultMaxChars = 500
	// DefaultTarget is the language results are translated into.
	DefaultTarget = "ar"
)

// Backend performs one translation.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text, target string) (string, error)
}

// Cache stores successful translations by key. models.ResultStore
// implements it.
type Cache interface {
	Translation(key string) (string, bool)
	StoreTranslation(key, value string)
}

// TranslationError wraps a backend failure. It is logged, never returned
// to callers of Translate.
type TranslationError struct {
	Backend string
	Err     error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate: %s: %v", e.Backend, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// Options tunes a Translator. Zero values pick the defaults above.
type Options struct {
	Target   string
	MaxChars int
	Sentinel string
}

// Translator translates through a Backend with caching and request
// coalescing.
type Translator struct {
	backend  Backend
	target   string
	maxChars int
	sentinel string
	group    singleflight.Group
}

// New returns a Translator over backend.
func New(backend Backend, opts Options) *Translator {
	t := &Translator{
		backend:  backend,
		target:   opts.Target,
		maxChars: opts.MaxChars,
		sentinel: opts.Sentinel,
	}
	if t.target == "" {
		t.target = DefaultTarget
	}
	if t.maxChars <= 0 {
		t.maxChars = DefaultMaxChars
	}
	if t.sentinel == "" {
		t.sentinel = DefaultSentinel
	}
	return t
}

// Sentinel returns the string substituted for failed translations.
func (t *Translator) Sentinel() string { return t.sentinel }

// Target returns the target language code.
func (t *Translator) Target() string { return t.target }

// Translate returns the cached translation for cacheKey or asks the backend
// for one. Only the first maxChars runes of text are sent. On failure the
// sentinel is returned and nothing is cached, so a later call retries.
// Concurrent calls for the same key share one backend request.
func (t *Translator) Translate(ctx context.Context, cache Cache, text, cacheKey string) string {
	if cached, ok := cache.Translation(cacheKey); ok {
		metrics.ObserveTranslation("hit")
		return cached
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}

	// The cache is checked again inside the flight: a call for the same key
	// may have finished between the lookup above and Do.
	v, err, _ := t.group.Do(cacheKey, func() (any, error) {
		if cached, ok := cache.Translation(cacheKey); ok {
			metrics.ObserveTranslation("hit")
			return cached, nil
		}
		out, err := t.backend.Translate(ctx, textutil.Truncate(text, t.maxChars), t.target)
		if err != nil {
			return "", &TranslationError{Backend: t.backend.Name(), Err: err}
		}
		out = strings.TrimSpace(out)
		if out == "" {
			return "", &TranslationError{Backend: t.backend.Name(), Err: fmt.Errorf("empty translation")}
		}
		cache.StoreTranslation(cacheKey, out)
		metrics.ObserveTranslation("miss")
		return out, nil
	})
	if err != nil {
		metrics.ObserveTranslation("error")
		slog.Warn("translate: backend failed", "key", cacheKey, "err", err)
		return t.sentinel
	}
	return v.(string)
}
