package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	scoringStartedTotal   atomic.Uint64
	scoringCompletedTotal atomic.Uint64
	scoringFailedTotal    atomic.Uint64
	extractionFailedTotal atomic.Uint64
	analysesSavedTotal    atomic.Uint64
	optimizationsRunTotal atomic.Uint64

	scoringDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

func IncScoringStarted()   { scoringStartedTotal.Add(1) }
func IncScoringCompleted() { scoringCompletedTotal.Add(1) }
func IncScoringFailed()    { scoringFailedTotal.Add(1) }
func IncExtractionFailed() { extractionFailedTotal.Add(1) }
func IncAnalysesSaved()    { analysesSavedTotal.Add(1) }
func IncOptimizationsRun() { optimizationsRunTotal.Add(1) }

// ObserveScoringDurationMs records a scoring run duration in milliseconds.
func ObserveScoringDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	scoringDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4", []byte(Render()))
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "scoring_started_total", "Scoring runs started", scoringStartedTotal.Load())
	writeCounter(&buf, "scoring_completed_total", "Scoring runs that produced a validated result", scoringCompletedTotal.Load())
	writeCounter(&buf, "scoring_failed_total", "Scoring runs that ended in an error", scoringFailedTotal.Load())
	writeCounter(&buf, "extraction_failed_total", "Uploads rejected by text extraction", extractionFailedTotal.Load())
	writeCounter(&buf, "analyses_saved_total", "Analyses persisted", analysesSavedTotal.Load())
	writeCounter(&buf, "optimizations_run_total", "Re-scoring runs with accepted suggestions", optimizationsRunTotal.Load())
	writeHistogram(&buf, "scoring_duration_ms", "Scoring duration in milliseconds", scoringDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64 // per bucket, not cumulative
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
