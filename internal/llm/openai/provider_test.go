package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"resume-scorer/internal/llm"
	"resume-scorer/internal/prompt"
)

func sseServer(t *testing.T, deltas []string, seen *map[string]any, mu *sync.Mutex) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		*seen = payload
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			chunk, _ := json.Marshal(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion.chunk",
				"choices": []map[string]any{{"index": 0, "delta": map[string]any{"content": d}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestStreamForwardsDeltas(t *testing.T) {
	var (
		mu   sync.Mutex
		seen map[string]any
	)
	srv := sseServer(t, []string{`{"overall":`, `80}`}, &seen, &mu)
	defer srv.Close()

	p, err := New("test-key", "gpt-4o-mini", srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chunks, err := p.Stream(context.Background(), llm.Request{
		System:      "sys",
		Instruction: "score this",
		Schema:      prompt.ScoresSchema(),
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var b strings.Builder
	for c := range chunks {
		if c.Err != nil {
			t.Fatalf("chunk error: %v", c.Err)
		}
		b.WriteString(c.Text)
	}
	if b.String() != `{"overall":80}` {
		t.Fatalf("unexpected text %q", b.String())
	}

	mu.Lock()
	defer mu.Unlock()
	if seen["stream"] != true {
		t.Fatalf("expected stream=true, got %v", seen["stream"])
	}
	if temp, ok := seen["temperature"].(float64); !ok || temp < 0.09 || temp > 0.11 {
		t.Fatalf("expected temperature 0.1, got %v", seen["temperature"])
	}
	rf, _ := seen["response_format"].(map[string]any)
	if rf["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %v", rf)
	}
}

func TestStreamOmitsTemperatureForReasoningModels(t *testing.T) {
	var (
		mu   sync.Mutex
		seen map[string]any
	)
	srv := sseServer(t, []string{`{}`}, &seen, &mu)
	defer srv.Close()

	p, err := New("test-key", "gpt-5-mini", srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chunks, err := p.Stream(context.Background(), llm.Request{Instruction: "x", Temperature: 0.1})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	for range chunks {
	}

	mu.Lock()
	defer mu.Unlock()
	if _, ok := seen["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted")
	}
}

func TestRejectsTemperature(t *testing.T) {
	t.Setenv("LLM_NO_TEMPERATURE_MODELS", "custom-")
	tests := []struct {
		model string
		want  bool
	}{
		{"gpt-5", true},
		{" GPT-5-mini ", true},
		{"o3-mini", true},
		{"custom-model", true},
		{"gpt-4o", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := rejectsTemperature(tt.model); got != tt.want {
			t.Fatalf("rejectsTemperature(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}
