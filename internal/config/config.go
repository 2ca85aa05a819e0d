// Package config loads application configuration from environment variables.
// A .env file in the working directory is read first when present.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Providers ProvidersConfig
	Scan      ScanConfig
	Translate TranslateConfig
	Ollama    OllamaConfig
	Sentiment SentimentConfig
	S3        S3Config
	Session   SessionConfig
	Worker    WorkerConfig
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port string
	Host string
}

// Addr returns the full listen address (host:port).
func (c ServerConfig) Addr() string {
	return c.Host + c.Port
}

// LogConfig controls the slog handler and optional rotating log file.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ProvidersConfig holds the default credentials, endpoints and pacing of the
// search providers. Sessions may override the credentials.
type ProvidersConfig struct {
	YouTubeKey   string
	NewsKey      string
	XBearerToken string

	YouTubeEndpoint   string
	NewsBaseURL       string
	XBaseURL          string
	GoogleNewsBaseURL string

	Timeout    time.Duration
	MaxResults int

	YouTubeInterval    time.Duration
	NewsInterval       time.Duration
	XInterval          time.Duration
	GoogleNewsInterval time.Duration
	Burst              int
}

// ScanConfig controls the scan loop.
type ScanConfig struct {
	MaxKeywordsPerCell int
	Orientation        string
	DefaultPlatforms   []string
}

// TranslateConfig selects and configures the translation backend.
type TranslateConfig struct {
	Backend       string
	Target        string
	MaxChars      int
	Sentinel      string
	GoogleBaseURL string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
}

// OllamaConfig holds the Ollama LLM server parameters.
type OllamaConfig struct {
	Host          string
	InstructModel string
}

// SentimentConfig configures comment sentiment analysis.
type SentimentConfig struct {
	Backend     string
	HFToken     string
	HFModel     string
	HFBaseURL   string
	VideoURLs   []string
	MaxComments int
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

// SessionConfig controls dashboard sessions.
type SessionConfig struct {
	CookieName    string
	TTL           time.Duration
	SweepSchedule string
	Secure        bool
}

// WorkerConfig configures the headless scheduled monitor.
type WorkerConfig struct {
	Schedule  string
	TablePath string
	Languages []string
	Series    []string
	Platforms []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: could not read .env", "err", err)
	}

	return Config{
		Server: ServerConfig{
			Port: envOr("SERVER_PORT", ":8080"),
			Host: envOr("SERVER_HOST", ""),
		},
		Log: LogConfig{
			Level:      envOr("LOG_LEVEL", "info"),
			File:       envOr("LOG_FILE", ""),
			MaxSizeMB:  envOrInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: envOrInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: envOrInt("LOG_MAX_AGE_DAYS", 30),
		},
		Providers: ProvidersConfig{
			YouTubeKey:         envOr("YOUTUBE_API_KEY", ""),
			NewsKey:            envOr("NEWSAPI_KEY", ""),
			XBearerToken:       envOr("X_BEARER_TOKEN", ""),
			YouTubeEndpoint:    envOr("YOUTUBE_ENDPOINT", ""),
			NewsBaseURL:        envOr("NEWSAPI_BASE_URL", "https://newsapi.org"),
			XBaseURL:           envOr("X_BASE_URL", "https://api.twitter.com"),
			GoogleNewsBaseURL:  envOr("GOOGLE_NEWS_BASE_URL", "https://news.google.com"),
			Timeout:            envOrDuration("PROVIDER_TIMEOUT", 15*time.Second),
			MaxResults:         envOrInt("PROVIDER_MAX_RESULTS", 10),
			YouTubeInterval:    envOrDuration("RATE_YOUTUBE", time.Second),
			NewsInterval:       envOrDuration("RATE_NEWS", time.Second),
			XInterval:          envOrDuration("RATE_X", 2*time.Second),
			GoogleNewsInterval: envOrDuration("RATE_GOOGLE_NEWS", time.Second),
			Burst:              envOrInt("RATE_BURST", 1),
		},
		Scan: ScanConfig{
			MaxKeywordsPerCell: envOrInt("SCAN_MAX_KEYWORDS_PER_CELL", 2),
			Orientation:        envOr("TABLE_ORIENTATION", "auto"),
			DefaultPlatforms:   envOrList("SCAN_DEFAULT_PLATFORMS", []string{"YouTube", "X"}),
		},
		Translate: TranslateConfig{
			Backend:       envOr("TRANSLATE_BACKEND", "google"),
			Target:        envOr("TRANSLATE_TARGET", "ar"),
			MaxChars:      envOrInt("TRANSLATE_MAX_CHARS", 500),
			Sentinel:      envOr("TRANSLATE_SENTINEL", "خطأ في الترجمة"),
			GoogleBaseURL: envOr("TRANSLATE_GOOGLE_BASE_URL", "https://translate.googleapis.com"),
			OpenAIKey:     envOr("OPENAI_API_KEY", ""),
			OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: envOr("OPENAI_BASE_URL", ""),
		},
		Ollama: OllamaConfig{
			Host:          envOr("OLLAMA_HOST", "http://localhost:11434"),
			InstructModel: envOr("OLLAMA_INSTRUCT_MODEL", "llama3"),
		},
		Sentiment: SentimentConfig{
			Backend:     envOr("SENTIMENT_BACKEND", "huggingface"),
			HFToken:     envOr("HF_TOKEN", ""),
			HFModel:     envOr("HF_MODEL", "cardiffnlp/twitter-xlm-roberta-base-sentiment"),
			HFBaseURL:   envOr("HF_BASE_URL", "https://api-inference.huggingface.co"),
			VideoURLs:   envOrList("SENTIMENT_VIDEO_URLS", nil),
			MaxComments: envOrInt("SENTIMENT_MAX_COMMENTS", 100),
		},
		S3: S3Config{
			Endpoint:  envOr("S3_ENDPOINT", ""),
			Bucket:    envOr("S3_BUCKET", "radar-exports"),
			AccessKey: envOr("S3_ACCESS_KEY", ""),
			SecretKey: envOr("S3_SECRET_KEY", ""),
			Region:    envOr("S3_REGION", "us-east-1"),
		},
		Session: SessionConfig{
			CookieName:    envOr("SESSION_COOKIE", "radar_session"),
			TTL:           envOrDuration("SESSION_TTL", 12*time.Hour),
			SweepSchedule: envOr("SESSION_SWEEP", "@every 15m"),
			Secure:        envOrBool("SESSION_SECURE", false),
		},
		Worker: WorkerConfig{
			Schedule:  envOr("WORKER_SCHEDULE", "0 */6 * * *"),
			TablePath: envOr("WORKER_TABLE_PATH", ""),
			Languages: envOrList("WORKER_LANGUAGES", nil),
			Series:    envOrList("WORKER_SERIES", nil),
			Platforms: envOrList("WORKER_PLATFORMS", []string{"YouTube", "X", "News"}),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envOrBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// envOrList splits a comma-separated variable, trimming blanks.
func envOrList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
