package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/api/youtube/v3"

	"github.com/Saul-Punybz/radar/internal/models"
)

func jsonHandler(t *testing.T, status int, body string, check func(r *http.Request)) (http.HandlerFunc, *int32) {
	t.Helper()
	var calls int32
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}, &calls
}

func TestNoCredentialsMakesNoRequest(t *testing.T) {
	h, calls := jsonHandler(t, http.StatusOK, `{}`, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	opts := Options{BaseURL: srv.URL}
	for _, p := range []Provider{NewNews(opts), NewX(opts), NewYouTube(opts)} {
		res, err := p.Search(context.Background(), "kw", "ar", Credentials{})
		if err != nil || len(res) != 0 {
			t.Errorf("%s: Search = %v, %v; want empty, nil", p.Platform(), res, err)
		}
	}
	if n := atomic.LoadInt32(calls); n != 0 {
		t.Errorf("server received %d requests, want 0", n)
	}
}

func TestNewsSearch(t *testing.T) {
	body := `{"status":"ok","articles":[
		{"title":"Show A trailer released","description":"The new series Show A","url":"https://example.com/a","publishedAt":"2026-03-01T10:00:00Z","source":{"name":"Example"}},
		{"title":"[Removed]","url":"https://removed.com"},
		{"title":"Unrelated","description":"nothing here","url":"https://example.com/b"}
	]}`
	h, _ := jsonHandler(t, http.StatusOK, body, func(r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "news-key" {
			t.Errorf("X-Api-Key = %q", got)
		}
		q := r.URL.Query()
		if q.Get("q") != `"Show A"` || q.Get("language") != "ar" || q.Get("pageSize") != "10" {
			t.Errorf("query = %v", q)
		}
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	res, err := NewNews(Options{BaseURL: srv.URL}).Search(context.Background(), "Show A", "ar", Credentials{NewsKey: "news-key"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("got %d results, want 1: %+v", len(res), res)
	}
	r := res[0]
	if r.Platform != models.PlatformNews || r.Link != "https://example.com/a" || r.Language != "ar" {
		t.Errorf("result = %+v", r)
	}
	if !strings.Contains(r.Content, "[Example]") {
		t.Errorf("content = %q", r.Content)
	}
	if want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC); !r.Date.Equal(want) {
		t.Errorf("date = %v", r.Date)
	}
}

func TestNewsUnsupportedLanguageOmitsParam(t *testing.T) {
	h, _ := jsonHandler(t, http.StatusOK, `{"status":"ok","articles":[]}`, func(r *http.Request) {
		if _, ok := r.URL.Query()["language"]; ok {
			t.Errorf("language param sent for unsupported language")
		}
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	if _, err := NewNews(Options{BaseURL: srv.URL}).Search(context.Background(), "kw", "tr", Credentials{NewsKey: "k"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
}

func TestNewsErrorStatus(t *testing.T) {
	h, _ := jsonHandler(t, http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	_, err := NewNews(Options{BaseURL: srv.URL}).Search(context.Background(), "kw", "en", Credentials{NewsKey: "bad"})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if pe.StatusCode != http.StatusUnauthorized || !strings.Contains(pe.Error(), "invalid") {
		t.Errorf("ProviderError = %v", pe)
	}
}

func TestXSearch(t *testing.T) {
	body := `{
		"data":[
			{"id":"1","text":"watching Show A tonight","author_id":"u1","created_at":"2026-03-02T20:00:00Z"},
			{"id":"2","text":"something else","author_id":"u1"},
			{"id":"3","text":"SHOW A is great","author_id":"u9"}
		],
		"includes":{"users":[{"id":"u1","username":"fan","name":"A Fan"}]}
	}`
	h, _ := jsonHandler(t, http.StatusOK, body, func(r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/2/tweets/search/recent" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != `"Show A" lang:en -is:retweet` {
			t.Errorf("query = %q", got)
		}
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	res, err := NewX(Options{BaseURL: srv.URL}).Search(context.Background(), "Show A", "en", Credentials{XBearerToken: "tok"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("got %d results, want 2", len(res))
	}
	if res[0].Link != "https://x.com/fan/status/1" || !strings.HasPrefix(res[0].Content, "@fan (A Fan): ") {
		t.Errorf("first = %+v", res[0])
	}
	if res[1].Link != "https://x.com/i/web/status/3" || !strings.HasPrefix(res[1].Content, "@unknown") {
		t.Errorf("second = %+v", res[1])
	}
}

func TestXErrorStatus(t *testing.T) {
	h, _ := jsonHandler(t, http.StatusTooManyRequests, `{"title":"Too Many Requests","detail":"Too Many Requests"}`, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	_, err := NewX(Options{BaseURL: srv.URL}).Search(context.Background(), "kw", "en", Credentials{XBearerToken: "tok"})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want 429 ProviderError", err)
	}
}

func TestNetworkFailureIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewX(Options{BaseURL: base, Timeout: time.Second}).Search(context.Background(), "kw", "en", Credentials{XBearerToken: "tok"})
	if !IsProviderError(err) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
}

func TestYouTubeResults(t *testing.T) {
	items := []*youtube.SearchResult{
		{
			Id:      &youtube.ResourceId{VideoId: "abc"},
			Snippet: &youtube.SearchResultSnippet{Title: "Show A &amp; friends", Description: "episode 1", PublishedAt: "2026-03-01T00:00:00Z"},
		},
		{
			Id:      &youtube.ResourceId{VideoId: "def"},
			Snippet: &youtube.SearchResultSnippet{Title: "Other", Description: "talks about show a"},
		},
		{
			Id:      &youtube.ResourceId{VideoId: "ghi"},
			Snippet: &youtube.SearchResultSnippet{Title: "Nothing", Description: "nope"},
		},
		{Id: &youtube.ResourceId{}, Snippet: &youtube.SearchResultSnippet{Title: "Show A channel"}},
		nil,
	}
	res := youTubeResults("Show A", "ar", items)
	if len(res) != 2 {
		t.Fatalf("got %d results, want 2", len(res))
	}
	if res[0].Content != "Show A & friends - episode 1" {
		t.Errorf("content = %q", res[0].Content)
	}
	if res[0].Link != "https://www.youtube.com/watch?v=abc" || res[1].Link != "https://www.youtube.com/watch?v=def" {
		t.Errorf("links = %q, %q", res[0].Link, res[1].Link)
	}
}

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Google News</title>
<item><title>Show A breaks records</title><link>https://news.example.com/1</link>
<description>&lt;a href="x"&gt;Show A breaks records&lt;/a&gt; viewers</description>
<pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate></item>
<item><title>Weather today</title><link>https://news.example.com/2</link><description>rain</description></item>
</channel></rss>`

func TestGoogleNewsSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rss/search" || r.URL.Query().Get("hl") != "ar" {
			t.Errorf("request = %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	res, err := NewGoogleNews(Options{BaseURL: srv.URL}).Search(context.Background(), "show a", "ar", Credentials{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("got %d results, want 1", len(res))
	}
	if res[0].Link != "https://news.example.com/1" || res[0].Platform != models.PlatformGoogleNews {
		t.Errorf("result = %+v", res[0])
	}
}

func TestGoogleNewsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewGoogleNews(Options{BaseURL: srv.URL}).Search(context.Background(), "kw", "en", Credentials{})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("err = %v, want 503 ProviderError", err)
	}
}

type countingProvider struct {
	calls int32
}

func (c *countingProvider) Platform() models.Platform { return models.PlatformX }

func (c *countingProvider) Search(context.Context, string, string, Credentials) ([]models.SearchResult, error) {
	atomic.AddInt32(&c.calls, 1)
	return nil, nil
}

func TestLimitedPacesCalls(t *testing.T) {
	inner := &countingProvider{}
	l := NewLimited(inner, 50*time.Millisecond, 1)
	creds := Credentials{XBearerToken: "t"}

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := l.Search(context.Background(), "kw", "en", creds); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 calls took %v, want >= ~100ms", elapsed)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d", inner.calls)
	}
}

func TestLimitedSkipsWithoutCredentials(t *testing.T) {
	inner := &countingProvider{}
	l := NewLimited(inner, time.Hour, 1)
	for i := 0; i < 3; i++ {
		if _, err := l.Search(context.Background(), "kw", "en", Credentials{}); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}
	if inner.calls != 0 {
		t.Errorf("calls = %d, want 0", inner.calls)
	}
}

func TestLimitedHonorsContext(t *testing.T) {
	l := NewLimited(&countingProvider{}, time.Hour, 1)
	creds := Credentials{XBearerToken: "t"}
	if _, err := l.Search(context.Background(), "kw", "en", creds); err != nil {
		t.Fatalf("first Search: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Search(ctx, "kw", "en", creds); err == nil {
		t.Error("expected error when the limiter cannot grant a token before the deadline")
	}
}
