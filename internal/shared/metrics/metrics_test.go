package metrics

import (
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	var cumulative uint64
	for i := range snap.buckets {
		cumulative += snap.counts[i]
	}
	if cumulative != 2 {
		t.Fatalf("expected 2 observations inside buckets, got %d", cumulative)
	}
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("unexpected totals: count=%d sum=%v", snap.count, snap.sum)
	}
}

func TestRenderIncludesScoringCounters(t *testing.T) {
	IncScoringStarted()
	IncScoringFailed()
	ObserveScoringDurationMs(300)

	out := Render()
	for _, want := range []string{
		"# TYPE scoring_started_total counter",
		"scoring_failed_total ",
		"scoring_duration_ms_bucket{le=\"500\"}",
		"scoring_duration_ms_bucket{le=\"+Inf\"}",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
