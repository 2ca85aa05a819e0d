package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Saul-Punybz/radar/internal/ai"
	"github.com/Saul-Punybz/radar/internal/config"
	"github.com/Saul-Punybz/radar/internal/textutil"
)

// Classifier assigns a sentiment label to one comment.
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}

// FromConfig builds the classifier selected by cfg.Backend ("huggingface"
// or "ollama"), memoized by comment text.
func FromConfig(cfg config.SentimentConfig, ollama config.OllamaConfig) (Classifier, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "huggingface", "hf":
		return Memoize(NewHuggingFace(cfg.HFBaseURL, cfg.HFToken, cfg.HFModel, 0)), nil
	case "ollama":
		return Memoize(Ollama{ai.NewClient(ollama.Host, ollama.InstructModel)}), nil
	}
	return nil, fmt.Errorf("sentiment: unknown backend %q", cfg.Backend)
}

// maxInputChars keeps inputs well inside the hosted model's token window.
const maxInputChars = 512

// HuggingFace calls a hosted text-classification model through the
// Inference API.
type HuggingFace struct {
	rest  *resty.Client
	model string
}

// NewHuggingFace returns a classifier for model. token may be empty for
// anonymous, rate-limited access.
func NewHuggingFace(baseURL, token, model string, timeout time.Duration) *HuggingFace {
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		rest.SetAuthToken(token)
	}
	return &HuggingFace{rest: rest, model: model}
}

type hfScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type hfError struct {
	Error string `json:"error"`
}

func (h *HuggingFace) Classify(ctx context.Context, text string) (Label, error) {
	var apiErr hfError
	resp, err := h.rest.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"inputs":  textutil.Truncate(text, maxInputChars),
			"options": map[string]bool{"wait_for_model": true},
		}).
		SetError(&apiErr).
		Post("/models/" + h.model)
	if err != nil {
		return "", fmt.Errorf("huggingface: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("huggingface: status %d: %s", resp.StatusCode(), apiErr.Error)
	}
	return parseHFScores(resp.Body())
}

// parseHFScores accepts both the nested [[{label,score}]] and the flat
// [{label,score}] response shapes and returns the best-scoring label.
func parseHFScores(body []byte) (Label, error) {
	var nested [][]hfScore
	var scores []hfScore
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		scores = nested[0]
	} else if err := json.Unmarshal(body, &scores); err != nil {
		return "", fmt.Errorf("huggingface: decode: %w", err)
	}

	best := -1.0
	var label Label
	for _, s := range scores {
		l, ok := ParseLabel(s.Label)
		if !ok || s.Score <= best {
			continue
		}
		best, label = s.Score, l
	}
	if label == "" {
		return "", fmt.Errorf("huggingface: no recognised label in response")
	}
	return label, nil
}

// Ollama classifies with the local LLM.
type Ollama struct {
	*ai.OllamaClient
}

func (o Ollama) Classify(ctx context.Context, text string) (Label, error) {
	raw, err := o.ClassifySentiment(ctx, textutil.Truncate(text, maxInputChars))
	if err != nil {
		return "", err
	}
	l, ok := ParseLabel(raw)
	if !ok {
		return "", fmt.Errorf("ollama: unrecognised label %q", raw)
	}
	return l, nil
}

type memo struct {
	next Classifier

	mu    sync.Mutex
	cache map[string]Label
}

// Memoize caches successful classifications by exact comment text.
func Memoize(c Classifier) Classifier {
	return &memo{next: c, cache: make(map[string]Label)}
}

func (m *memo) Classify(ctx context.Context, text string) (Label, error) {
	m.mu.Lock()
	l, ok := m.cache[text]
	m.mu.Unlock()
	if ok {
		return l, nil
	}

	l, err := m.next.Classify(ctx, text)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.cache[text] = l
	m.mu.Unlock()
	return l, nil
}
