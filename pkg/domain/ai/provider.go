// Package ai defines the LLM collaborator contract used by the interpreter.
package ai

import (
	"context"
	"encoding/json"
	"errors"
)

// FormatJSON asks the provider to answer with a single JSON object.
const FormatJSON = "json"

// ErrUnavailable is returned when no model is configured.
var ErrUnavailable = errors.New("language model unavailable")

// CompletionRequest represents a prompt to the model.
type CompletionRequest struct {
	Prompt      string
	System      string
	Temperature float32
	MaxTokens   int
	// Format is "" for free text or FormatJSON.
	Format string
	// Schema is the JSON Schema the answer is expected to satisfy.
	Schema json.RawMessage
}

// WantsJSON reports whether the caller expects a JSON object back.
func (r CompletionRequest) WantsJSON() bool {
	return r.Format == FormatJSON || len(r.Schema) > 0
}

// CompletionResponse represents the model's answer.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
	Model string
}

// TokenUsage tracks costs.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is the interface for all model backends.
type Provider interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
