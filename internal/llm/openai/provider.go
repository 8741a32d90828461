package openai

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"resume-scorer/internal/llm"
)

const defaultModel = "gpt-4o-mini"

// Provider streams structured output from an OpenAI-compatible chat API.
type Provider struct {
	client *openai.Client
	model  string
}

// New creates an OpenAI provider. baseURL may point at any compatible endpoint.
func New(apiKey, model, baseURL string) (*Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Provider{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (p *Provider) Name() string { return "openai:" + p.model }

// Stream implements llm.Provider.
func (p *Provider) Stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Instruction})

	chatReq := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   true,
	}
	if !rejectsTemperature(p.model) {
		chatReq.Temperature = req.Temperature
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "structured_result",
				Schema: req.Schema,
			},
		}
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	out := make(chan llm.Chunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				llm.Send(ctx, out, llm.Chunk{Err: err})
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if !llm.Send(ctx, out, llm.Chunk{Text: resp.Choices[0].Delta.Content}) {
				return
			}
		}
	}()
	return out, nil
}

// rejectsTemperature reports models that only accept the default temperature.
// LLM_NO_TEMPERATURE_MODELS adds comma-separated prefixes to the built-in list.
func rejectsTemperature(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	prefixes := []string{"gpt-5", "o1", "o3", "o4"}
	for _, extra := range strings.Split(os.Getenv("LLM_NO_TEMPERATURE_MODELS"), ",") {
		if extra = strings.ToLower(strings.TrimSpace(extra)); extra != "" {
			prefixes = append(prefixes, extra)
		}
	}
	for _, p := range prefixes {
		if strings.HasPrefix(m, p) {
			return true
		}
	}
	return false
}

var _ llm.Provider = (*Provider)(nil)
