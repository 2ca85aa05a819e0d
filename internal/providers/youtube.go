package providers

import (
	"context"
	"errors"
	"html"
	"net/url"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/Saul-Punybz/radar/internal/models"
	"github.com/Saul-Punybz/radar/internal/textutil"
)

// YouTube searches videos through the YouTube Data API v3.
type YouTube struct {
	opts Options
}

// NewYouTube returns a YouTube provider. Options.BaseURL overrides the API
// endpoint (it must end with "/youtube/v3/").
func NewYouTube(opts Options) *YouTube {
	return &YouTube{opts: opts}
}

func (p *YouTube) Platform() models.Platform { return models.PlatformYouTube }

// NewYouTubeService builds a Data API client authenticated with an API key.
func NewYouTubeService(ctx context.Context, apiKey, endpoint string) (*youtube.Service, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return youtube.NewService(ctx, opts...)
}

// Search runs one search.list call for the quoted keyword.
func (p *YouTube) Search(ctx context.Context, keyword, language string, creds Credentials) ([]models.SearchResult, error) {
	if creds.YouTubeKey == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout())
	defer cancel()

	svc, err := NewYouTubeService(ctx, creds.YouTubeKey, p.opts.BaseURL)
	if err != nil {
		return nil, &ProviderError{Platform: models.PlatformYouTube, Keyword: keyword, Err: err}
	}

	call := svc.Search.List([]string{"snippet"}).
		Q(quoted(keyword)).
		Type("video").
		MaxResults(int64(p.opts.maxResults())).
		Context(ctx)
	if language != "" {
		call = call.RelevanceLanguage(language)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, youTubeError(keyword, err)
	}
	return youTubeResults(keyword, language, resp.Items), nil
}

// youTubeResults keeps the items whose title or description mention the
// keyword.
func youTubeResults(keyword, language string, items []*youtube.SearchResult) []models.SearchResult {
	var out []models.SearchResult
	for _, item := range items {
		if item == nil || item.Snippet == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		// The API returns HTML-escaped titles.
		title := html.UnescapeString(item.Snippet.Title)
		desc := html.UnescapeString(item.Snippet.Description)
		if !textutil.ContainsFold(title, keyword) && !textutil.ContainsFold(desc, keyword) {
			continue
		}
		out = append(out, models.SearchResult{
			Platform: models.PlatformYouTube,
			Keyword:  keyword,
			Language: language,
			Content:  title + " - " + textutil.Truncate(desc, 100),
			Link:     "https://www.youtube.com/watch?v=" + url.QueryEscape(item.Id.VideoId),
			Date:     parseTime(item.Snippet.PublishedAt),
		})
	}
	return out
}

func youTubeError(keyword string, err error) error {
	pe := &ProviderError{Platform: models.PlatformYouTube, Keyword: keyword, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		pe.StatusCode = gerr.Code
	}
	return pe
}
