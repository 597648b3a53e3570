package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	infraAI "github.com/felixgeelhaar/dictado/pkg/ai"
	"github.com/felixgeelhaar/dictado/pkg/domain/ai"
)

func TestOllamaProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model  string `json:"model"`
			Stream bool   `json:"stream"`
			Format string `json:"format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Model != "llama3" {
			t.Errorf("expected llama3, got %s", body.Model)
		}
		if body.Stream {
			t.Error("expected stream=false")
		}
		if body.Format != "json" {
			t.Errorf("expected json format, got %q", body.Format)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response":          "  {\"intent\":\"searchTask\"}\n",
			"done":              true,
			"prompt_eval_count": 20,
			"eval_count":        6,
		})
	}))
	defer server.Close()

	p := infraAI.NewOllamaProviderWithClient("", server.URL, server.Client())
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{
		Prompt: "buscar tareas de marketing",
		Format: ai.FormatJSON,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != `{"intent":"searchTask"}` {
		t.Errorf("expected trimmed response, got %q", resp.Text)
	}
	if resp.Usage.InputTokens != 20 || resp.Usage.OutputTokens != 6 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
}

func TestOllamaProvider_Validation(t *testing.T) {
	tests := []struct {
		name  string
		model string
		req   ai.CompletionRequest
	}{
		{"unsafe model name", "llama3; rm -rf /", ai.CompletionRequest{Prompt: "hola"}},
		{"negative temperature", "llama3", ai.CompletionRequest{Prompt: "hola", Temperature: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := infraAI.NewOllamaProviderWithClient(tt.model, "http://127.0.0.1:0", nil)
			if _, err := p.Complete(context.Background(), tt.req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOllamaProvider_ID(t *testing.T) {
	p := infraAI.NewOllamaProvider("mistral")
	if p.ID() != "ollama:mistral" {
		t.Errorf("unexpected ID %s", p.ID())
	}
}
