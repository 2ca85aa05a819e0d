package providers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/Saul-Punybz/radar/internal/models"
	"github.com/Saul-Punybz/radar/internal/textutil"
)

const newsAPIBaseURL = "https://newsapi.org"

// newsAPILanguages are the language values /v2/everything accepts. NewsAPI
// spells Urdu "ud".
var newsAPILanguages = map[string]string{
	"ar": "ar", "de": "de", "en": "en", "es": "es", "fr": "fr", "he": "he",
	"it": "it", "nl": "nl", "no": "no", "pt": "pt", "ru": "ru", "sv": "sv",
	"ur": "ud", "zh": "zh",
}

// News searches articles through NewsAPI's /v2/everything endpoint.
type News struct {
	opts Options
	rest *resty.Client
}

// NewNews returns a NewsAPI provider.
func NewNews(opts Options) *News {
	return &News{opts: opts, rest: opts.restClient(newsAPIBaseURL)}
}

func (p *News) Platform() models.Platform { return models.PlatformNews }

type newsResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

type newsError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Search runs one /v2/everything query for the quoted keyword.
func (p *News) Search(ctx context.Context, keyword, language string, creds Credentials) ([]models.SearchResult, error) {
	if creds.NewsKey == "" {
		return nil, nil
	}

	params := map[string]string{
		"q":        quoted(keyword),
		"pageSize": strconv.Itoa(p.opts.maxResults()),
		"sortBy":   "publishedAt",
	}
	if lang, ok := newsAPILanguages[baseLanguage(language)]; ok {
		params["language"] = lang
	}

	var out newsResponse
	var apiErr newsError
	resp, err := p.rest.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", creds.NewsKey).
		SetQueryParams(params).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v2/everything")
	if err != nil {
		return nil, &ProviderError{Platform: models.PlatformNews, Keyword: keyword, Err: err}
	}
	if resp.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = textutil.Truncate(resp.String(), 200)
		}
		return nil, &ProviderError{Platform: models.PlatformNews, Keyword: keyword, StatusCode: resp.StatusCode(), Err: errors.New(msg)}
	}
	if out.Status != "ok" {
		return nil, &ProviderError{Platform: models.PlatformNews, Keyword: keyword, Err: fmt.Errorf("unexpected status %q", out.Status)}
	}

	var results []models.SearchResult
	for _, a := range out.Articles {
		if a.URL == "" || a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		text := a.Title + " " + a.Description + " " + a.Content
		if !textutil.ContainsFold(text, keyword) {
			continue
		}
		content := strings.TrimSpace(a.Title)
		if a.Description != "" {
			content += " - " + textutil.Truncate(strings.TrimSpace(a.Description), 150)
		}
		if a.Source.Name != "" {
			content = "[" + a.Source.Name + "] " + content
		}
		results = append(results, models.SearchResult{
			Platform: models.PlatformNews,
			Keyword:  keyword,
			Language: language,
			Content:  content,
			Link:     a.URL,
			Date:     parseTime(a.PublishedAt),
		})
	}
	return results, nil
}

// baseLanguage strips a region subtag: "pt-BR" → "pt".
func baseLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	base, _, _ := strings.Cut(strings.ReplaceAll(tag, "_", "-"), "-")
	return base
}
