package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveProviderCallOutcomes(t *testing.T) {
	tests := []struct {
		results int
		err     error
		outcome string
	}{
		{3, nil, "ok"},
		{0, nil, "empty"},
		{0, errors.New("boom"), "error"},
		{0, context.Canceled, "canceled"},
	}
	for _, tt := range tests {
		before := testutil.ToFloat64(providerRequests.WithLabelValues("TestPlatform", tt.outcome))
		ObserveProviderCall("TestPlatform", tt.results, tt.err, 10*time.Millisecond)
		after := testutil.ToFloat64(providerRequests.WithLabelValues("TestPlatform", tt.outcome))
		if after-before != 1 {
			t.Errorf("outcome %q: counter moved by %v", tt.outcome, after-before)
		}
	}
	if got := testutil.ToFloat64(providerResults.WithLabelValues("TestPlatform")); got != 3 {
		t.Errorf("results counter = %v, want 3", got)
	}
}
