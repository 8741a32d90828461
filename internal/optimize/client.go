package optimize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resume-scorer/internal/analyses"
	"resume-scorer/internal/scoring"
	"resume-scorer/internal/suggestions"
)

// API is the server surface the controller needs.
type API interface {
	GetAnalysis(ctx context.Context, analysisID string) (analyses.Analysis, error)
	Suggest(ctx context.Context, analysisID string, req suggestions.SuggestRequest) (suggestions.SuggestResponse, error)
	Optimize(ctx context.Context, analysisID string, req suggestions.OptimizeRequest) (scoring.Scores, error)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.Status)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// Client calls the scoring API with a bearer token.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewClient returns a Client for baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) GetAnalysis(ctx context.Context, analysisID string) (analyses.Analysis, error) {
	var out struct {
		Analysis analyses.Analysis `json:"analysis"`
	}
	if err := c.do(ctx, http.MethodGet, analysisPath(analysisID, ""), nil, &out); err != nil {
		return analyses.Analysis{}, err
	}
	return out.Analysis, nil
}

func (c *Client) Suggest(ctx context.Context, analysisID string, req suggestions.SuggestRequest) (suggestions.SuggestResponse, error) {
	var out suggestions.SuggestResponse
	if err := c.do(ctx, http.MethodPost, analysisPath(analysisID, "/suggestions"), req, &out); err != nil {
		return suggestions.SuggestResponse{}, err
	}
	return out, nil
}

func (c *Client) Optimize(ctx context.Context, analysisID string, req suggestions.OptimizeRequest) (scoring.Scores, error) {
	var out struct {
		Scores scoring.Scores `json:"scores"`
	}
	if err := c.do(ctx, http.MethodPost, analysisPath(analysisID, "/optimize"), req, &out); err != nil {
		return scoring.Scores{}, err
	}
	return out.Scores, nil
}

func analysisPath(analysisID, suffix string) string {
	return "/api/v1/analyses/" + url.PathEscape(analysisID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
