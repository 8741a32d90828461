package llm

import (
	"context"
	"errors"

	"resume-scorer/internal/prompt"
)

// Request is one structured-output generation call.
type Request struct {
	System      string
	Instruction string
	Schema      *prompt.Schema
	Temperature float32
}

// Chunk is a piece of streamed model output. A chunk with Err ends the stream.
type Chunk struct {
	Text string
	Err  error
}

// Provider streams model output for a request. The returned channel is closed
// when the model finishes, fails, or ctx is cancelled.
type Provider interface {
	Name() string
	Stream(ctx context.Context, req Request) (<-chan Chunk, error)
}

// ErrNotConfigured is returned by the placeholder provider.
var ErrNotConfigured = errors.New("llm provider not configured")

// Placeholder is used when no provider credentials are configured.
type Placeholder struct{}

func (Placeholder) Name() string { return "none" }

// Stream returns ErrNotConfigured.
func (Placeholder) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
	return nil, ErrNotConfigured
}

// Send delivers c unless ctx is done first. Providers use it so an abandoned
// consumer never blocks the producing goroutine.
func Send(ctx context.Context, out chan<- Chunk, c Chunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
