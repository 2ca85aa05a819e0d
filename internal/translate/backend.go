package translate

import (
	"fmt"
	"strings"

	"github.com/Saul-Punybz/radar/internal/ai"
	"github.com/Saul-Punybz/radar/internal/config"
)

// Ollama adapts the local LLM client to Backend.
type Ollama struct {
	*ai.OllamaClient
}

func (Ollama) Name() string { return "ollama" }

// FromConfig builds the Translator selected by cfg.Backend: "google",
// "openai" or "ollama".
func FromConfig(cfg config.TranslateConfig, ollama config.OllamaConfig) (*Translator, error) {
	var backend Backend
	switch strings.ToLower(cfg.Backend) {
	case "", "google":
		backend = NewGoogle(cfg.GoogleBaseURL, 0)
	case "openai":
		if cfg.OpenAIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("translate: openai backend needs OPENAI_API_KEY")
		}
		backend = NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	case "ollama":
		backend = Ollama{ai.NewClient(ollama.Host, ollama.InstructModel)}
	default:
		return nil, fmt.Errorf("translate: unknown backend %q", cfg.Backend)
	}
	return New(backend, Options{
		Target:   cfg.Target,
		MaxChars: cfg.MaxChars,
		Sentinel: cfg.Sentinel,
	}), nil
}
