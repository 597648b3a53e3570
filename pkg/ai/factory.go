package ai

import (
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/dictado/pkg/domain/ai"
)

// ProviderNames lists the accepted provider names.
var ProviderNames = []string{"none", "mock", "ollama", "openai", "anthropic", "gemini"}

// NewProvider builds the named provider. "none" and "" return a nil
// provider, which disables the model fallbacks. API keys are read from
// OPENAI_API_KEY, ANTHROPIC_API_KEY and GEMINI_API_KEY.
func NewProvider(providerName, modelName, baseURL string) (ai.Provider, error) {
	switch strings.ToLower(providerName) {
	case "none", "":
		return nil, nil
	case "mock":
		return &MockProvider{Model: modelName}, nil
	case "ollama":
		return NewOllamaProviderWithClient(modelName, baseURL, nil), nil
	case "openai":
		return NewOpenAIProviderWithClient(modelName, os.Getenv("OPENAI_API_KEY"), baseURL, nil), nil
	case "anthropic":
		return NewAnthropicProviderWithClient(modelName, os.Getenv("ANTHROPIC_API_KEY"), baseURL, nil), nil
	case "gemini":
		return NewGeminiProviderWithClient(modelName, os.Getenv("GEMINI_API_KEY"), baseURL, nil), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}
