package sentiment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/youtube/v3"

	"github.com/Saul-Punybz/radar/internal/config"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/live/dQw4w9WgXcQ?feature=share", "dQw4w9WgXcQ", true},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=short", "", false},
		{"https://vimeo.com/123456789", "", false},
		{"https://www.youtube.com/channel/UC123", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := VideoID(tt.in)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("VideoID(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidVideoURL) {
			t.Errorf("VideoID(%q) err = %v, want ErrInvalidVideoURL", tt.in, err)
		}
	}
}

func TestParseLabel(t *testing.T) {
	tests := map[string]Label{
		"positive": Positive,
		"LABEL_2":  Positive,
		"Neutral":  Neutral,
		"label_1":  Neutral,
		"negative": Negative,
		"LABEL_0":  Negative,
	}
	for in, want := range tests {
		if got, ok := ParseLabel(in); !ok || got != want {
			t.Errorf("ParseLabel(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseLabel("mixed"); ok {
		t.Error("ParseLabel accepted unknown label")
	}
}

type fakeSource map[string][]string

func (f fakeSource) Comments(ctx context.Context, videoID string, limit int) ([]string, error) {
	c, ok := f[videoID]
	if !ok {
		return nil, errors.New("comments disabled")
	}
	if len(c) > limit {
		c = c[:limit]
	}
	return c, nil
}

type keywordClassifier struct{ calls int }

func (k *keywordClassifier) Classify(ctx context.Context, text string) (Label, error) {
	k.calls++
	switch {
	case strings.Contains(text, "love"):
		return Positive, nil
	case strings.Contains(text, "hate"):
		return Negative, nil
	case strings.Contains(text, "???"):
		return "", errors.New("model overloaded")
	}
	return Neutral, nil
}

func TestAnalyze(t *testing.T) {
	src := fakeSource{
		"aaaaaaaaaaa": {"love it", "hate it", "when is episode 2", "love love"},
		"bbbbbbbbbbb": {"hate this", "???"},
	}
	a := &Analyzer{Source: src, Classifier: &keywordClassifier{}, MaxComments: 10}

	rep, err := a.Analyze(context.Background(), []string{
		"https://youtu.be/aaaaaaaaaaa",
		"not a url",
		"https://www.youtube.com/watch?v=bbbbbbbbbbb",
		"https://www.youtube.com/watch?v=ccccccccccc",
		"",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(rep.Videos) != 4 {
		t.Fatalf("videos = %d, want 4", len(rep.Videos))
	}
	want := Distribution{Positive: 2, Neutral: 1, Negative: 2}
	if rep.Totals != want {
		t.Errorf("totals = %+v, want %+v", rep.Totals, want)
	}
	if rep.Videos[1].Error == "" || rep.Videos[3].Error == "" {
		t.Errorf("expected errors recorded on invalid and failing videos: %+v", rep.Videos)
	}
	if rep.Videos[2].Unclassified != 1 {
		t.Errorf("unclassified = %d, want 1", rep.Videos[2].Unclassified)
	}
	if len(rep.Slices) != 3 {
		t.Errorf("slices = %d, want 3", len(rep.Slices))
	}
}

func TestAnalyzeRespectsMaxComments(t *testing.T) {
	src := fakeSource{"aaaaaaaaaaa": {"love", "love", "love", "hate"}}
	a := &Analyzer{Source: src, Classifier: &keywordClassifier{}, MaxComments: 2}
	rep, err := a.Analyze(context.Background(), []string{"aaaaaaaaaaa"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Totals.Total() != 2 {
		t.Errorf("classified %d comments, want 2", rep.Totals.Total())
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &Analyzer{Source: fakeSource{}, Classifier: &keywordClassifier{}}
	if _, err := a.Analyze(ctx, []string{"aaaaaaaaaaa"}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestMemoize(t *testing.T) {
	inner := &keywordClassifier{}
	c := Memoize(inner)
	for i := 0; i < 3; i++ {
		if l, err := c.Classify(context.Background(), "love it"); err != nil || l != Positive {
			t.Fatalf("Classify = %q, %v", l, err)
		}
	}
	if _, err := c.Classify(context.Background(), "???"); err == nil {
		t.Fatal("expected error")
	}
	c.Classify(context.Background(), "???")
	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3 (one success, two failures)", inner.calls)
	}
}

func TestPieSlices(t *testing.T) {
	if s := PieSlices(Distribution{}); s != nil {
		t.Errorf("empty distribution gave %v", s)
	}

	half := PieSlices(Distribution{Positive: 1, Negative: 1})
	if len(half) != 2 {
		t.Fatalf("slices = %d", len(half))
	}
	if half[0].Label != Positive || half[0].Percent != 50 || half[0].Color != labelColors[Positive] {
		t.Errorf("first slice = %+v", half[0])
	}
	if want := "M 100.00 100.00 L 100.00 0.00 A 100.00 100.00 0 0 1 100.00 200.00 Z"; half[0].Path != want {
		t.Errorf("path = %q, want %q", half[0].Path, want)
	}

	thirds := PieSlices(Distribution{Positive: 1, Neutral: 1, Negative: 1})
	for _, s := range thirds {
		if s.Percent != 33.3 {
			t.Errorf("%s percent = %v", s.Label, s.Percent)
		}
	}

	big := PieSlices(Distribution{Positive: 3, Negative: 1})
	if !strings.Contains(big[0].Path, " 0 1 1 ") {
		t.Errorf("majority slice should use the large arc flag: %q", big[0].Path)
	}

	full := PieSlices(Distribution{Neutral: 5})
	if len(full) != 1 || full[0].Percent != 100 || strings.Count(full[0].Path, "A ") != 2 {
		t.Errorf("full slice = %+v", full)
	}
}

func TestHuggingFace(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Label
	}{
		{"nested", `[[{"label":"negative","score":0.1},{"label":"positive","score":0.8},{"label":"neutral","score":0.1}]]`, Positive},
		{"flat", `[{"label":"LABEL_0","score":0.7},{"label":"LABEL_2","score":0.3}]`, Negative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/models/org/model" {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer hf-token" {
					t.Errorf("Authorization = %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewHuggingFace(srv.URL, "hf-token", "org/model", 0).Classify(context.Background(), "text")
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHuggingFaceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is loading"}`))
	}))
	defer srv.Close()

	_, err := NewHuggingFace(srv.URL, "", "org/model", 0).Classify(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "Model is loading") {
		t.Errorf("err = %v", err)
	}
}

func TestCommentTexts(t *testing.T) {
	items := []*youtube.CommentThread{
		{Snippet: &youtube.CommentThreadSnippet{TopLevelComment: &youtube.Comment{
			Snippet: &youtube.CommentSnippet{TextOriginal: "  great episode  "},
		}}},
		{Snippet: &youtube.CommentThreadSnippet{TopLevelComment: &youtube.Comment{
			Snippet: &youtube.CommentSnippet{TextDisplay: "Tom &amp; Jerry"},
		}}},
		{Snippet: &youtube.CommentThreadSnippet{}},
		nil,
	}
	got := commentTexts(items)
	if len(got) != 2 || got[0] != "great episode" || got[1] != "Tom & Jerry" {
		t.Errorf("commentTexts = %q", got)
	}
}

func TestYouTubeCommentsNeedsKey(t *testing.T) {
	_, err := YouTubeComments{}.Comments(context.Background(), "aaaaaaaaaaa", 10)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestFromConfig(t *testing.T) {
	for _, backend := range []string{"", "huggingface", "ollama"} {
		if _, err := FromConfig(config.SentimentConfig{Backend: backend}, config.OllamaConfig{}); err != nil {
			t.Errorf("%q: %v", backend, err)
		}
	}
	if _, err := FromConfig(config.SentimentConfig{Backend: "vader"}, config.OllamaConfig{}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
