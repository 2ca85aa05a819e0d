// Package ai provides a client for a local Ollama server, used as an
// optional translation and sentiment backend.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const generateTimeout = 60 * time.Second

// OllamaClient is an HTTP client for the Ollama API.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a new OllamaClient for the given base URL and instruct
// model.
func NewClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: generateTimeout,
		},
	}
}

// generateRequest is the JSON body sent to POST /api/generate.
type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is one JSON object of the streamed response.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Translate asks the model to translate text into the target language
// (an ISO 639-1 code such as "ar").
func (c *OllamaClient) Translate(ctx context.Context, text, target string) (string, error) {
	systemPrompt := fmt.Sprintf(`You are a translator. Translate the user's text into the language with ISO 639-1 code %q.

RULES:
- Output ONLY the translation
- Keep names, hashtags, @handles and URLs unchanged
- Do NOT explain, transliterate or add notes`, target)

	out, err := c.generate(ctx, systemPrompt, text)
	if err != nil {
		return "", fmt.Errorf("ollama translate: %w", err)
	}
	out = cleanAIResponse(out)
	if out == "" {
		return "", fmt.Errorf("ollama translate: produced empty or invalid translation")
	}
	return out, nil
}

// ClassifySentiment labels a comment as "positive", "negative" or "neutral".
func (c *OllamaClient) ClassifySentiment(ctx context.Context, text string) (string, error) {
	systemPrompt := `You are a strict sentiment classifier for viewer comments about TV series. Comments may be in any language.

ALLOWED LABELS: positive, negative, neutral

EXAMPLES:
"أفضل مسلسل هذا العام" → positive
"the writing got so lazy this season" → negative
"what time is the next episode?" → neutral

RULES:
- Output ONLY one label from the list above
- NO explanations, NO sentences, NO punctuation`

	resp, err := c.generate(ctx, systemPrompt, text)
	if err != nil {
		return "", fmt.Errorf("ollama classify: %w", err)
	}
	label, ok := parseSentimentLabel(resp)
	if !ok {
		return "", fmt.Errorf("ollama classify: unrecognised label %q", resp)
	}
	return label, nil
}

// generate performs a POST to /api/generate and concatenates the streamed
// response into a single string.
func (c *OllamaClient) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		System: systemPrompt,
		Prompt: userPrompt,
		Stream: true,
	})
	if err != nil {
		return "", fmt.Errorf("generate: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("generate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("generate: status %d: %s", resp.StatusCode, string(respBody))
	}

	// One JSON object per line; keep what arrived if the stream breaks.
	var sb strings.Builder
	decoder := json.NewDecoder(resp.Body)
	for decoder.More() {
		var chunk generateResponse
		if err := decoder.Decode(&chunk); err != nil {
			if sb.Len() > 0 {
				break
			}
			return "", fmt.Errorf("generate: decode chunk: %w", err)
		}
		sb.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("generate: empty response")
	}
	return result, nil
}

// refusalPatterns indicate the model answered with commentary instead of the
// requested output. Matched case-insensitively.
var refusalPatterns = []string{
	"i cannot",
	"i can't",
	"i don't have",
	"as an ai",
	"here is the translation",
	"here's the translation",
	"please provide",
	"لا أستطيع",
	"لا يمكنني",
}

// cleanAIResponse strips quotes and returns "" when the response is a
// refusal or commentary.
func cleanAIResponse(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	for _, pattern := range refusalPatterns {
		if strings.Contains(lower, pattern) {
			return ""
		}
	}
	s = strings.Trim(s, "\"'«»“”")
	return strings.TrimSpace(s)
}

// parseSentimentLabel finds the first allowed label in a model answer.
func parseSentimentLabel(s string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.Trim(t, "\"'.!-* ")
	switch t {
	case "positive", "negative", "neutral":
		return t, true
	}
	// Salvage answers like "Label: negative".
	for _, label := range []string{"negative", "positive", "neutral"} {
		if strings.Contains(t, label) {
			return label, true
		}
	}
	return "", false
}
