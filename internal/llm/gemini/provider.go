package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"resume-scorer/internal/llm"
	"resume-scorer/internal/prompt"
)

const defaultModel = "gemini-2.5-flash"

// Provider streams structured output from the Gemini API.
type Provider struct {
	client *genai.Client
	model  string
}

// New creates a Gemini provider. An empty model selects the default.
func New(ctx context.Context, apiKey, model string) (*Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Name() string { return "gemini:" + p.model }

// Stream implements llm.Provider.
func (p *Provider) Stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenai(req.Schema),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	out := make(chan llm.Chunk)
	go func() {
		defer close(out)
		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, genai.Text(req.Instruction), cfg) {
			if err != nil {
				llm.Send(ctx, out, llm.Chunk{Err: err})
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !llm.Send(ctx, out, llm.Chunk{Text: text}) {
				return
			}
		}
	}()
	return out, nil
}

// toGenai converts a JSON schema tree into Gemini's schema type.
func toGenai(s *prompt.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             genaiType(s.Type),
		Description:      s.Description,
		Required:         s.Required,
		Minimum:          s.Minimum,
		Maximum:          s.Maximum,
		PropertyOrdering: s.Order,
		Items:            toGenai(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenai(prop)
		}
	}
	return out
}

func genaiType(t prompt.Type) genai.Type {
	switch t {
	case prompt.TypeObject:
		return genai.TypeObject
	case prompt.TypeArray:
		return genai.TypeArray
	case prompt.TypeNumber:
		return genai.TypeNumber
	case prompt.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

var _ llm.Provider = (*Provider)(nil)
