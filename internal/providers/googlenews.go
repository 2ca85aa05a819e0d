package providers

import (
	"context"
	"errors"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Saul-Punybz/radar/internal/models"
	"github.com/Saul-Punybz/radar/internal/textutil"
)

const googleNewsBaseURL = "https://news.google.com"

var reTags = regexp.MustCompile(`<[^>]*>`)

// GoogleNews searches the keyless Google News RSS search feed.
type GoogleNews struct {
	opts Options
}

// NewGoogleNews returns a Google News RSS provider.
func NewGoogleNews(opts Options) *GoogleNews {
	return &GoogleNews{opts: opts}
}

func (p *GoogleNews) Platform() models.Platform { return models.PlatformGoogleNews }

func (p *GoogleNews) feedURL(keyword, language string) string {
	base := p.opts.BaseURL
	if base == "" {
		base = googleNewsBaseURL
	}
	q := url.Values{"q": {quoted(keyword)}}
	if language != "" {
		q.Set("hl", language)
	}
	return strings.TrimRight(base, "/") + "/rss/search?" + q.Encode()
}

// Search fetches one RSS search feed. Google News needs no credential.
func (p *GoogleNews) Search(ctx context.Context, keyword, language string, _ Credentials) ([]models.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout())
	defer cancel()

	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = p.opts.HTTPClient
	if fp.Client == nil {
		fp.Client = &http.Client{Timeout: p.opts.timeout()}
	}

	feed, err := fp.ParseURLWithContext(p.feedURL(keyword, language), ctx)
	if err != nil {
		pe := &ProviderError{Platform: models.PlatformGoogleNews, Keyword: keyword, Err: err}
		var herr gofeed.HTTPError
		if errors.As(err, &herr) {
			pe.StatusCode = herr.StatusCode
		}
		return nil, pe
	}
	return googleNewsResults(keyword, language, feed, p.opts.maxResults()), nil
}

func googleNewsResults(keyword, language string, feed *gofeed.Feed, limit int) []models.SearchResult {
	var out []models.SearchResult
	for _, item := range feed.Items {
		if len(out) >= limit {
			break
		}
		if item == nil || item.Link == "" {
			continue
		}
		desc := stripHTML(item.Description)
		if !textutil.ContainsFold(item.Title+" "+desc, keyword) {
			continue
		}
		date := time.Now().UTC()
		if item.PublishedParsed != nil {
			date = item.PublishedParsed.UTC()
		}
		content := strings.TrimSpace(item.Title)
		if desc != "" && !strings.HasPrefix(desc, content) {
			content += " - " + textutil.Truncate(desc, 150)
		}
		out = append(out, models.SearchResult{
			Platform: models.PlatformGoogleNews,
			Keyword:  keyword,
			Language: language,
			Content:  content,
			Link:     item.Link,
			Date:     date,
		})
	}
	return out
}

func stripHTML(s string) string {
	s = reTags.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}
