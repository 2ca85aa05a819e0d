// Package models defines the search results collected during a monitoring
// session and the in-memory store that accumulates them.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Platform identifies where a result was found.
type Platform string

const (
	PlatformYouTube    Platform = "YouTube"
	PlatformX          Platform = "X"
	PlatformNews       Platform = "News"
	PlatformGoogleNews Platform = "GoogleNews"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformYouTube, PlatformX, PlatformNews, PlatformGoogleNews}

// ParsePlatform resolves a platform name case-insensitively. "twitter" is
// accepted as an alias for X.
func ParsePlatform(s string) (Platform, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "twitter") {
		return PlatformX, nil
	}
	for _, p := range Platforms {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// ParsePlatforms resolves a list of names, dropping duplicates.
func ParsePlatforms(names []string) ([]Platform, error) {
	var out []Platform
	seen := make(map[Platform]bool)
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		p, err := ParsePlatform(n)
		if err != nil {
			return nil, err
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// SearchResult is a single keyword match on an external platform.
type SearchResult struct {
	ID       uuid.UUID `json:"id"`
	Platform Platform  `json:"platform"`
	Keyword  string    `json:"keyword"`
	Language string    `json:"language"`
	Series   string    `json:"series"`
	Content  string    `json:"content"`
	Link     string    `json:"link"`
	Date     time.Time `json:"date"`
}
