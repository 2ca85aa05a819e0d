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

const xBaseURL = "https://api.twitter.com"

// X searches recent posts through the X API v2 recent-search endpoint.
type X struct {
	opts Options
	rest *resty.Client
}

// NewX returns an X provider.
func NewX(opts Options) *X {
	return &X{opts: opts, rest: opts.restClient(xBaseURL)}
}

func (p *X) Platform() models.Platform { return models.PlatformX }

type xUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type xResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		AuthorID  string `json:"author_id"`
		CreatedAt string `json:"created_at"`
		Lang      string `json:"lang"`
	} `json:"data"`
	Includes struct {
		Users []xUser `json:"users"`
	} `json:"includes"`
}

type xError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (e xError) message() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case len(e.Errors) > 0:
		return e.Errors[0].Message
	}
	return e.Title
}

// xQuery builds the recent-search query: exact phrase, language operator,
// retweets excluded.
func xQuery(keyword, language string) string {
	q := quoted(keyword)
	if lang := baseLanguage(language); lang != "" {
		q += " lang:" + lang
	}
	return q + " -is:retweet"
}

// Search runs one recent-search query for the keyword.
func (p *X) Search(ctx context.Context, keyword, language string, creds Credentials) ([]models.SearchResult, error) {
	if creds.XBearerToken == "" {
		return nil, nil
	}

	// The endpoint accepts 10..100.
	max := p.opts.maxResults()
	if max < 10 {
		max = 10
	}
	if max > 100 {
		max = 100
	}

	var out xResponse
	var apiErr xError
	resp, err := p.rest.R().
		SetContext(ctx).
		SetAuthToken(creds.XBearerToken).
		SetQueryParams(map[string]string{
			"query":        xQuery(keyword, language),
			"tweet.fields": "created_at,text,author_id,lang",
			"max_results":  strconv.Itoa(max),
			"expansions":   "author_id",
			"user.fields":  "username,name",
		}).
		SetResult(&out).
		SetError(&apiErr).
		Get("/2/tweets/search/recent")
	if err != nil {
		return nil, &ProviderError{Platform: models.PlatformX, Keyword: keyword, Err: err}
	}
	if resp.IsError() {
		msg := apiErr.message()
		if msg == "" {
			msg = textutil.Truncate(resp.String(), 200)
		}
		return nil, &ProviderError{Platform: models.PlatformX, Keyword: keyword, StatusCode: resp.StatusCode(), Err: errors.New(msg)}
	}

	users := make(map[string]xUser, len(out.Includes.Users))
	for _, u := range out.Includes.Users {
		users[u.ID] = u
	}

	var results []models.SearchResult
	for _, tw := range out.Data {
		if !textutil.ContainsFold(tw.Text, keyword) {
			continue
		}
		author, ok := users[tw.AuthorID]
		username := author.Username
		if !ok || username == "" {
			username = "unknown"
		}
		link := fmt.Sprintf("https://x.com/%s/status/%s", username, tw.ID)
		if !ok || author.Username == "" {
			link = "https://x.com/i/web/status/" + tw.ID
		}
		results = append(results, models.SearchResult{
			Platform: models.PlatformX,
			Keyword:  keyword,
			Language: language,
			Content:  fmt.Sprintf("@%s (%s): %s", username, strings.TrimSpace(author.Name), textutil.Ellipsize(tw.Text, 150)),
			Link:     link,
			Date:     parseTime(tw.CreatedAt),
		})
	}
	return results, nil
}
