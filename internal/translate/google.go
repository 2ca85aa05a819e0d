package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const googleBaseURL = "https://translate.googleapis.com"

// Google uses the public translate endpoint with automatic source-language
// detection. It needs no key.
type Google struct {
	rest *resty.Client
}

// NewGoogle returns a Google backend. An empty baseURL selects the public
// endpoint.
func NewGoogle(baseURL string, timeout time.Duration) *Google {
	if baseURL == "" {
		baseURL = googleBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Google{rest: resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(timeout)}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Translate(ctx context.Context, text, target string) (string, error) {
	resp, err := g.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     "auto",
			"tl":     target,
			"dt":     "t",
			"q":      text,
		}).
		Get("/translate_a/single")
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}
	return parseGoogle(resp.Body())
}

// parseGoogle joins the translated segments of a response shaped
// [[["translated","source",...],...],...].
func parseGoogle(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("decode: empty response")
	}
	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("decode segments: %w", err)
	}
	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("decode: no translated segments")
	}
	return sb.String(), nil
}
