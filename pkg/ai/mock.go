package ai

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/dictado/pkg/domain/ai"
)

// MockProvider answers every request with Text, or fails with Err. When
// Text is empty and the request expects JSON it answers "{}". Requests are
// recorded for inspection.
type MockProvider struct {
	Model string
	Text  string
	Err   error

	mu    sync.Mutex
	calls []ai.CompletionRequest
}

func (m *MockProvider) ID() string {
	return "mock:" + m.Model
}

func (m *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	text := m.Text
	if text == "" && req.WantsJSON() {
		text = "{}"
	}
	return &ai.CompletionResponse{
		Text:  text,
		Model: m.Model,
		Usage: ai.TokenUsage{
			InputTokens:  len(req.Prompt) / 4,
			OutputTokens: len(text) / 4,
		},
	}, nil
}

// Calls returns a copy of the recorded requests.
func (m *MockProvider) Calls() []ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
