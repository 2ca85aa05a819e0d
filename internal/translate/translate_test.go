package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/Saul-Punybz/radar/internal/config"
)

type mapCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newMapCache() *mapCache { return &mapCache{m: make(map[string]string)} }

func (c *mapCache) Translation(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache) StoreTranslation(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

type fakeBackend struct {
	calls  int
	inputs []string
	reply  string
	err    error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Translate(ctx context.Context, text, target string) (string, error) {
	f.calls++
	f.inputs = append(f.inputs, text)
	if f.err != nil {
		return "", f.err
	}
	return f.reply + ":" + target, nil
}

func TestTranslateCachesSuccess(t *testing.T) {
	backend := &fakeBackend{reply: "مرحبا"}
	tr := New(backend, Options{})
	cache := newMapCache()

	first := tr.Translate(context.Background(), cache, "hello", "r1")
	second := tr.Translate(context.Background(), cache, "hello", "r1")
	if first != "مرحبا:ar" || second != first {
		t.Errorf("translations = %q, %q", first, second)
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1", backend.calls)
	}
	if v, ok := cache.Translation("r1"); !ok || v != first {
		t.Errorf("cache[r1] = %q, %v", v, ok)
	}
}

func TestTranslateFailureReturnsSentinelUncached(t *testing.T) {
	backend := &fakeBackend{err: errors.New("quota exceeded")}
	tr := New(backend, Options{})
	cache := newMapCache()

	got := tr.Translate(context.Background(), cache, "hello", "r1")
	if got != DefaultSentinel {
		t.Errorf("got %q, want sentinel", got)
	}
	if _, ok := cache.Translation("r1"); ok {
		t.Error("failure was cached")
	}

	backend.err = nil
	backend.reply = "ok"
	if got := tr.Translate(context.Background(), cache, "hello", "r1"); got != "ok:ar" {
		t.Errorf("retry = %q", got)
	}
	if backend.calls != 2 {
		t.Errorf("backend calls = %d, want 2", backend.calls)
	}
}

func TestTranslateTruncatesInput(t *testing.T) {
	backend := &fakeBackend{reply: "x"}
	tr := New(backend, Options{})

	long := make([]rune, 800)
	for i := range long {
		long[i] = 'ع'
	}
	tr.Translate(context.Background(), newMapCache(), string(long), "r1")
	if n := utf8.RuneCountInString(backend.inputs[0]); n != 500 {
		t.Errorf("sent %d runes, want 500", n)
	}
}

func TestTranslateBlankText(t *testing.T) {
	backend := &fakeBackend{reply: "x"}
	tr := New(backend, Options{})
	if got := tr.Translate(context.Background(), newMapCache(), "   ", "r1"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if backend.calls != 0 {
		t.Error("backend called for blank text")
	}
}

// slowBackend blocks every call until release is closed.
type slowBackend struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (b *slowBackend) Name() string { return "slow" }

func (b *slowBackend) Translate(ctx context.Context, text, target string) (string, error) {
	if b.calls.Add(1) == 1 {
		close(b.entered)
	}
	<-b.release
	return "ترجمة", nil
}

func TestTranslateConcurrentCallsShareOneRequest(t *testing.T) {
	backend := &slowBackend{entered: make(chan struct{}), release: make(chan struct{})}
	tr := New(backend, Options{})
	cache := newMapCache()

	const n = 8
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tr.Translate(context.Background(), cache, "hello", "r1")
		}(i)
	}
	<-backend.entered
	close(backend.release)
	wg.Wait()

	if got := backend.calls.Load(); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}
	for i, r := range results {
		if r != "ترجمة" {
			t.Errorf("result %d = %q", i, r)
		}
	}
}

// racingCache runs onMiss once, right after a lookup misses, to simulate
// another request completing between the lookup and the backend call.
type racingCache struct {
	*mapCache
	onMiss func()
}

func (c *racingCache) Translation(key string) (string, bool) {
	v, ok := c.mapCache.Translation(key)
	if !ok && c.onMiss != nil {
		hook := c.onMiss
		c.onMiss = nil
		hook()
	}
	return v, ok
}

func TestTranslateRechecksCacheBeforeBackend(t *testing.T) {
	backend := &fakeBackend{reply: "مرحبا"}
	tr := New(backend, Options{})
	cache := &racingCache{mapCache: newMapCache()}
	cache.onMiss = func() {
		tr.Translate(context.Background(), cache, "hello", "r1")
	}

	got := tr.Translate(context.Background(), cache, "hello", "r1")
	if got != "مرحبا:ar" {
		t.Errorf("got %q", got)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
}

func TestTranslateCustomOptions(t *testing.T) {
	backend := &fakeBackend{err: errors.New("down")}
	tr := New(backend, Options{Target: "en", Sentinel: "translation failed"})
	if tr.Target() != "en" {
		t.Errorf("Target = %q", tr.Target())
	}
	if got := tr.Translate(context.Background(), newMapCache(), "مرحبا", "r1"); got != "translation failed" {
		t.Errorf("got %q", got)
	}
}

func TestGoogleBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/translate_a/single" || q.Get("tl") != "ar" || q.Get("sl") != "auto" || q.Get("q") != "hello world" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["مرحبا ","hello ",null,null,10],["بالعالم","world",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	got, err := NewGoogle(srv.URL, 0).Translate(context.Background(), "hello world", "ar")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "مرحبا بالعالم" {
		t.Errorf("got %q", got)
	}
}

func TestGoogleBackendStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tr := New(NewGoogle(srv.URL, 0), Options{})
	if got := tr.Translate(context.Background(), newMapCache(), "hello", "r1"); got != DefaultSentinel {
		t.Errorf("got %q, want sentinel", got)
	}
}

func TestParseGoogleMalformed(t *testing.T) {
	for _, body := range []string{``, `{}`, `[]`, `[[]]`, `[null]`} {
		if _, err := parseGoogle([]byte(body)); err == nil {
			t.Errorf("parseGoogle(%q) succeeded", body)
		}
	}
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		backend string
		key     string
		want    string
		wantErr bool
	}{
		{"", "", "google", false},
		{"Google", "", "google", false},
		{"openai", "sk-test", "openai", false},
		{"openai", "", "", true},
		{"ollama", "", "ollama", false},
		{"deepl", "", "", true},
	}
	for _, tt := range tests {
		tr, err := FromConfig(config.TranslateConfig{Backend: tt.backend, OpenAIKey: tt.key}, config.OllamaConfig{Host: "http://localhost:11434"})
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.backend)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tt.backend, err)
			continue
		}
		if tr.backend.Name() != tt.want {
			t.Errorf("%q: backend = %s, want %s", tt.backend, tr.backend.Name(), tt.want)
		}
		if tr.Sentinel() != DefaultSentinel || tr.maxChars != DefaultMaxChars {
			t.Errorf("%q: defaults not applied", tt.backend)
		}
	}
}
