package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/dictado/pkg/domain/ai"
)

// completeJSON asks the provider for a JSON object and validates it against
// schema. It returns the cleaned payload.
func completeJSON(ctx context.Context, provider ai.Provider, system, prompt string, schema *gojsonschema.Schema, rawSchema string) (string, error) {
	resp, err := provider.Complete(ctx, ai.CompletionRequest{
		System:      system,
		Prompt:      prompt,
		Temperature: 0,
		MaxTokens:   256,
		Format:      ai.FormatJSON,
		Schema:      json.RawMessage(rawSchema),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}

	payload := extractJSONPayload(resp.Text)
	if payload == "" {
		return "", fmt.Errorf("empty model response")
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return "", fmt.Errorf("model response is not JSON: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			issues = append(issues, e.String())
		}
		return "", fmt.Errorf("model response failed schema validation: %s", strings.Join(issues, "; "))
	}
	return payload, nil
}

func mustSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in schema: %v", err))
	}
	return schema
}

// extractJSONPayload strips code fences and surrounding prose from a model
// response, keeping the outermost JSON object.
func extractJSONPayload(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end <= start {
		return clean
	}
	return clean[start : end+1]
}
