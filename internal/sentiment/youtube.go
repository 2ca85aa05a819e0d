package sentiment

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"google.golang.org/api/youtube/v3"

	"github.com/Saul-Punybz/radar/internal/providers"
)

// ErrNoAPIKey means the YouTube comment source has no key.
var ErrNoAPIKey = errors.New("a YouTube API key is required for sentiment analysis")

const commentPageSize = 100

// YouTubeComments reads top-level comments through commentThreads.list.
type YouTubeComments struct {
	APIKey   string
	Endpoint string
}

// Comments returns up to limit plain-text comments of a video, most relevant
// first.
func (y YouTubeComments) Comments(ctx context.Context, videoID string, limit int) ([]string, error) {
	if y.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	svc, err := providers.NewYouTubeService(ctx, y.APIKey, y.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("youtube comments: %w", err)
	}

	var out []string
	pageToken := ""
	for len(out) < limit {
		size := limit - len(out)
		if size > commentPageSize {
			size = commentPageSize
		}
		call := svc.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			MaxResults(int64(size)).
			Order("relevance").
			TextFormat("plainText").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return out, fmt.Errorf("youtube comments %s: %w", videoID, err)
		}
		out = append(out, commentTexts(resp.Items)...)
		pageToken = resp.NextPageToken
		if pageToken == "" || len(resp.Items) == 0 {
			break
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func commentTexts(items []*youtube.CommentThread) []string {
	var out []string
	for _, item := range items {
		if item == nil || item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		s := item.Snippet.TopLevelComment.Snippet
		text := s.TextOriginal
		if text == "" {
			text = html.UnescapeString(s.TextDisplay)
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	return out
}
