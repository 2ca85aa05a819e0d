// Package metrics exposes Prometheus instruments for provider calls, scans,
// translations and sentiment classification.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	providerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_provider_requests_total",
		Help: "Provider search calls by platform and outcome.",
	}, []string{"platform", "outcome"})

	providerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "radar_provider_request_duration_seconds",
		Help:    "Latency of provider search calls, including rate-limit waits.",
		Buckets: prometheus.DefBuckets,
	}, []string{"platform"})

	providerResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_provider_results_total",
		Help: "Matching results returned by providers.",
	}, []string{"platform"})

	scans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_scans_total",
		Help: "Completed scans by outcome.",
	}, []string{"outcome"})

	translations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_translations_total",
		Help: "Translation requests by outcome (hit, miss, error).",
	}, []string{"outcome"})

	sentimentLabels = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_sentiment_comments_total",
		Help: "Classified comments by label.",
	}, []string{"label"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "radar_active_sessions",
		Help: "Dashboard sessions currently held in memory.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveProviderCall records one provider call.
func ObserveProviderCall(platform string, results int, err error, took time.Duration) {
	outcome := "ok"
	switch {
	case err == nil && results == 0:
		outcome = "empty"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "canceled"
	case err != nil:
		outcome = "error"
	}
	providerRequests.WithLabelValues(platform, outcome).Inc()
	providerDuration.WithLabelValues(platform).Observe(took.Seconds())
	if results > 0 {
		providerResults.WithLabelValues(platform).Add(float64(results))
	}
}

// ObserveScan records a finished scan.
func ObserveScan(err error) {
	if err != nil {
		scans.WithLabelValues("aborted").Inc()
		return
	}
	scans.WithLabelValues("completed").Inc()
}

// ObserveTranslation records a translation outcome: "hit", "miss" or "error".
func ObserveTranslation(outcome string) {
	translations.WithLabelValues(outcome).Inc()
}

// ObserveSentiment records a classified comment.
func ObserveSentiment(label string) {
	sentimentLabels.WithLabelValues(label).Inc()
}

// SetActiveSessions updates the session gauge.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
