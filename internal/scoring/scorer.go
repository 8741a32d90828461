package scoring

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"resume-scorer/internal/llm"
	"resume-scorer/internal/prompt"
	"resume-scorer/internal/shared/metrics"
	"resume-scorer/internal/shared/telemetry"
)

// DefaultTemperature keeps scoring close to deterministic.
const DefaultTemperature float32 = 0.1

var (
	// ErrScoringUnavailable means the model provider could not be reached or failed mid-stream.
	ErrScoringUnavailable = errors.New("scoring unavailable")
	// ErrMalformedResult means the final model output failed validation.
	ErrMalformedResult = errors.New("malformed scoring result")
)

// Event is one step of a scoring stream. Exactly one of the fields is set.
// A stream ends with a single Final or Err event.
type Event struct {
	Partial map[string]any
	Final   *Result
	Err     error
}

// Scorer turns prompts into validated results using a model provider.
type Scorer struct {
	Provider    llm.Provider
	Temperature float32
}

// NewScorer returns a Scorer with the default temperature.
func NewScorer(p llm.Provider) *Scorer {
	return &Scorer{Provider: p, Temperature: DefaultTemperature}
}

// Score streams partial objects while the model writes, then the validated
// final result. The channel is closed when the stream ends or ctx is
// cancelled; cancelling ctx also stops the provider.
func (s *Scorer) Score(ctx context.Context, p prompt.Prompt) (<-chan Event, error) {
	start := time.Now()
	metrics.IncScoringStarted()
	telemetry.Info("scoring.status", map[string]any{"status": "started", "mode": p.Mode, "provider": s.Provider.Name()})

	chunks, err := s.Provider.Stream(ctx, s.request(p))
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrScoringUnavailable, err)
		s.finish(p.Mode, start, err)
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		res, err := s.consume(ctx, p.Mode, chunks, out)
		if ctx.Err() != nil {
			s.finish(p.Mode, start, ctx.Err())
			return
		}
		s.finish(p.Mode, start, err)
		if err != nil {
			send(ctx, out, Event{Err: err})
			return
		}
		send(ctx, out, Event{Final: &res})
	}()
	return out, nil
}

func (s *Scorer) consume(ctx context.Context, mode prompt.Mode, chunks <-chan llm.Chunk, out chan<- Event) (Result, error) {
	var (
		buf  strings.Builder
		last map[string]any
	)
	for chunk := range chunks {
		if chunk.Err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrScoringUnavailable, chunk.Err)
		}
		buf.WriteString(chunk.Text)
		partial, ok := partialObject(buf.String())
		if !ok || reflect.DeepEqual(partial, last) {
			continue
		}
		last = partial
		if !send(ctx, out, Event{Partial: partial}) {
			return Result{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res, err := ParseResult([]byte(buf.String()), mode)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMalformedResult, err)
	}
	return res, nil
}

// Generate drains a structured request and returns the complete output with
// any markdown fence removed. Callers decode and validate it.
func (s *Scorer) Generate(ctx context.Context, p prompt.Prompt) ([]byte, error) {
	chunks, err := s.Provider.Stream(ctx, s.request(p))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoringUnavailable, err)
	}
	var buf strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScoringUnavailable, chunk.Err)
		}
		buf.WriteString(chunk.Text)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := cleanJSON(buf.String())
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResult)
	}
	return []byte(raw), nil
}

func (s *Scorer) request(p prompt.Prompt) llm.Request {
	system := p.System
	if system == "" {
		system = prompt.SystemInstruction
	}
	return llm.Request{
		System:      system,
		Instruction: p.Instruction,
		Schema:      p.Schema,
		Temperature: s.Temperature,
	}
}

func (s *Scorer) finish(mode prompt.Mode, start time.Time, err error) {
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	metrics.ObserveScoringDurationMs(elapsed)
	fields := map[string]any{"mode": mode, "provider": s.Provider.Name(), "duration_ms": elapsed}
	switch {
	case err == nil:
		metrics.IncScoringCompleted()
		fields["status"] = "completed"
		telemetry.Info("scoring.status", fields)
	case errors.Is(err, context.Canceled):
		fields["status"] = "cancelled"
		telemetry.Info("scoring.status", fields)
	default:
		metrics.IncScoringFailed()
		fields["status"] = "failed"
		fields["error"] = err
		telemetry.Error("scoring.status", fields)
	}
}

func send(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
