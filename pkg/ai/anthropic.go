package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/dictado/pkg/domain/ai"
)

const (
	anthropicDefaultURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
	anthropicMaxTokens  = 1024
)

type AnthropicProvider struct {
	Model      string
	APIKey     string
	baseURL    string
	httpClient *http.Client
}

func NewAnthropicProvider(model string, apiKey string) *AnthropicProvider {
	return NewAnthropicProviderWithClient(model, apiKey, "", nil)
}

// NewAnthropicProviderWithClient creates a provider with a custom HTTP client and endpoint.
func NewAnthropicProviderWithClient(model, apiKey, baseURL string, client *http.Client) *AnthropicProvider {
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	if baseURL == "" {
		baseURL = anthropicDefaultURL
	}
	return &AnthropicProvider{
		Model:      model,
		APIKey:     apiKey,
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (p *AnthropicProvider) ID() string {
	return "anthropic:" + p.Model
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float32           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key not provided (set ANTHROPIC_API_KEY)")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}
	system := req.System
	if req.WantsJSON() {
		system = jsonInstruction(system, req.Schema)
	}

	aReq := anthropicRequest{
		Model:  p.Model,
		System: system,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		aReq.Temperature = &req.Temperature
	}

	headers := map[string]string{
		"x-api-key":         p.APIKey,
		"anthropic-version": anthropicVersion,
	}
	var aResp anthropicResponse
	if err := postJSON(ctx, p.httpClient, "Anthropic", p.baseURL, headers, aReq, &aResp); err != nil {
		return nil, err
	}

	for _, block := range aResp.Content {
		if block.Type == "" || block.Type == "text" {
			return &ai.CompletionResponse{
				Text:  block.Text,
				Model: p.Model,
				Usage: ai.TokenUsage{
					InputTokens:  aResp.Usage.InputTokens,
					OutputTokens: aResp.Usage.OutputTokens,
				},
			}, nil
		}
	}
	return nil, fmt.Errorf("Anthropic API returned no content")
}
