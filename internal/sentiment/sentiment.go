// Package sentiment classifies YouTube comments of a set of videos and
// summarises the label distribution for a pie chart.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Saul-Punybz/radar/internal/metrics"
)

// Label is a sentiment class.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Labels lists every label in chart order.
var Labels = []Label{Positive, Neutral, Negative}

// ParseLabel normalises model output. The numeric LABEL_n names used by
// three-class roberta models map to negative, neutral and positive.
func ParseLabel(s string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "pos", "label_2":
		return Positive, true
	case "neutral", "neu", "label_1":
		return Neutral, true
	case "negative", "neg", "label_0":
		return Negative, true
	}
	return "", false
}

// Distribution counts comments per label.
type Distribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Add counts one comment with label l.
func (d *Distribution) Add(l Label) {
	switch l {
	case Positive:
		d.Positive++
	case Neutral:
		d.Neutral++
	case Negative:
		d.Negative++
	}
}

// Merge adds o into d.
func (d *Distribution) Merge(o Distribution) {
	d.Positive += o.Positive
	d.Neutral += o.Neutral
	d.Negative += o.Negative
}

// Count returns the number of comments with label l.
func (d Distribution) Count(l Label) int {
	switch l {
	case Positive:
		return d.Positive
	case Neutral:
		return d.Neutral
	case Negative:
		return d.Negative
	}
	return 0
}

// Total returns the number of classified comments.
func (d Distribution) Total() int {
	return d.Positive + d.Neutral + d.Negative
}

// CommentSource fetches the comments of one video.
type CommentSource interface {
	Comments(ctx context.Context, videoID string, limit int) ([]string, error)
}

// VideoReport is the outcome for one requested URL.
type VideoReport struct {
	URL          string       `json:"url"`
	VideoID      string       `json:"video_id,omitempty"`
	Comments     int          `json:"comments"`
	Unclassified int          `json:"unclassified"`
	Counts       Distribution `json:"counts"`
	Error        string       `json:"error,omitempty"`
}

// Report aggregates every video of an analysis.
type Report struct {
	Videos []VideoReport `json:"videos"`
	Totals Distribution  `json:"totals"`
	Slices []Slice       `json:"slices"`
}

// Analyzer ties a comment source to a classifier.
type Analyzer struct {
	Source      CommentSource
	Classifier  Classifier
	MaxComments int
}

// Analyze classifies the comments of every URL in order. Invalid URLs and
// fetch failures are recorded on the video entry. Comments the classifier
// rejects are counted as unclassified. Only a cancelled context aborts the
// run, returning the partial report.
func (a *Analyzer) Analyze(ctx context.Context, urls []string) (Report, error) {
	limit := a.MaxComments
	if limit <= 0 {
		limit = 100
	}

	var rep Report
	for _, raw := range urls {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			rep.Slices = PieSlices(rep.Totals)
			return rep, fmt.Errorf("sentiment: %w", err)
		}

		vr := VideoReport{URL: raw}
		id, err := VideoID(raw)
		if err != nil {
			vr.Error = err.Error()
			rep.Videos = append(rep.Videos, vr)
			continue
		}
		vr.VideoID = id

		comments, err := a.Source.Comments(ctx, id, limit)
		if err != nil {
			slog.Warn("sentiment: fetching comments failed", "video", id, "err", err)
			vr.Error = err.Error()
			if len(comments) == 0 {
				rep.Videos = append(rep.Videos, vr)
				continue
			}
		}
		vr.Comments = len(comments)

		for _, c := range comments {
			l, err := a.Classifier.Classify(ctx, c)
			if err != nil {
				if ctx.Err() != nil {
					rep.Videos = append(rep.Videos, vr)
					rep.Totals.Merge(vr.Counts)
					rep.Slices = PieSlices(rep.Totals)
					return rep, fmt.Errorf("sentiment: %w", ctx.Err())
				}
				vr.Unclassified++
				slog.Debug("sentiment: classification failed", "video", id, "err", err)
				continue
			}
			vr.Counts.Add(l)
			metrics.ObserveSentiment(string(l))
		}

		rep.Videos = append(rep.Videos, vr)
		rep.Totals.Merge(vr.Counts)
	}

	rep.Slices = PieSlices(rep.Totals)
	slog.Info("sentiment: analysis complete",
		"videos", len(rep.Videos),
		"positive", rep.Totals.Positive,
		"neutral", rep.Totals.Neutral,
		"negative", rep.Totals.Negative,
	)
	return rep, nil
}
