package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func streamServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "llama3" || !req.Stream {
			t.Errorf("request = %+v", req)
		}
		for i, c := range chunks {
			done := i == len(chunks)-1
			b, _ := json.Marshal(generateResponse{Response: c, Done: done})
			fmt.Fprintf(w, "%s\n", b)
		}
	}))
}

func TestTranslateConcatenatesStream(t *testing.T) {
	srv := streamServer(t, "مسلسل ", "رائع")
	defer srv.Close()

	got, err := NewClient(srv.URL+"/", "llama3").Translate(context.Background(), "great show", "ar")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "مسلسل رائع" {
		t.Errorf("Translate = %q", got)
	}
}

func TestTranslateRejectsRefusal(t *testing.T) {
	srv := streamServer(t, "I cannot translate this.")
	defer srv.Close()

	if _, err := NewClient(srv.URL, "llama3").Translate(context.Background(), "x", "ar"); err == nil {
		t.Fatal("expected error for refusal")
	}
}

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		answer string
		want   string
	}{
		{"positive", "positive"},
		{" Negative.", "negative"},
		{"Label: neutral", "neutral"},
	}
	for _, tt := range tests {
		srv := streamServer(t, tt.answer)
		got, err := NewClient(srv.URL, "llama3").ClassifySentiment(context.Background(), "comment")
		srv.Close()
		if err != nil {
			t.Errorf("%q: %v", tt.answer, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.answer, got, tt.want)
		}
	}
}

func TestClassifySentimentUnknownLabel(t *testing.T) {
	srv := streamServer(t, "mixed feelings")
	defer srv.Close()

	if _, err := NewClient(srv.URL, "llama3").ClassifySentiment(context.Background(), "comment"); err == nil {
		t.Fatal("expected error for unknown label")
	}
}

func TestGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "llama3").Translate(context.Background(), "x", "ar"); err == nil {
		t.Fatal("expected status error")
	}
}
