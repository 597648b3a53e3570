package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/dictado/pkg/domain/ai"
	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/language"
)

// ClassificationSource records which strategy chose the intent.
type ClassificationSource string

const (
	SourceHint     ClassificationSource = "hint"
	SourceRule     ClassificationSource = "rule"
	SourceModel    ClassificationSource = "model"
	SourceFallback ClassificationSource = "fallback"
)

// Classification is the outcome of intent classification.
type Classification struct {
	Intent command.Intent       `json:"intent"`
	Source ClassificationSource `json:"source"`
	Rule   string               `json:"rule,omitempty"`
}

// Ambiguous reports whether nothing recognized the request.
func (c Classification) Ambiguous() bool {
	return c.Source == SourceFallback
}

const classifySystemPrompt = `Eres el clasificador de un asistente de tareas por voz en español.
Clasifica la petición del usuario en exactamente una de estas intenciones:
- createTask: crear una tarea
- createProject: crear un proyecto
- searchTask: buscar o listar tareas
- searchProject: buscar o listar proyectos
- updateTask: modificar, completar o cambiar el estado de una tarea
- updateProject: modificar un proyecto o su prioridad
- countTasks: contar tareas
- countProjects: contar proyectos
- assistance: cualquier otra cosa
Responde con un objeto JSON {"intent": "<nombre>"}.`

var (
	classifySchemaJSON = buildClassifySchema()
	classifySchema     = mustSchema(classifySchemaJSON)
)

func buildClassifySchema() string {
	names := make([]string, 0, len(command.AllIntents()))
	for _, i := range command.AllIntents() {
		names = append(names, i.String())
	}
	schema := map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"type":     "object",
		"required": []string{"intent"},
		"properties": map[string]any{
			"intent": map[string]any{"type": "string", "enum": names},
		},
	}
	data, _ := json.Marshal(schema)
	return string(data)
}

// IntentClassifier maps an utterance to an intent. The ordered rule table
// always wins; the model is consulted only when no rule matches, and
// assistance is the final fallback.
type IntentClassifier struct {
	provider ai.Provider
	logger   *slog.Logger
}

// NewIntentClassifier creates a classifier. provider may be nil.
func NewIntentClassifier(provider ai.Provider, logger *slog.Logger) *IntentClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntentClassifier{provider: provider, logger: logger}
}

// Classify never fails: every path ends in a member of the intent set.
func (c *IntentClassifier) Classify(ctx context.Context, raw string) Classification {
	text := language.Normalize(raw)
	if intent, rule, ok := command.MatchIntent(text); ok {
		return Classification{Intent: intent, Source: SourceRule, Rule: rule}
	}

	if c.provider != nil && text != "" {
		intent, err := c.classifyWithModel(ctx, raw)
		if err == nil {
			return Classification{Intent: intent, Source: SourceModel}
		}
		c.logger.Warn("model classification failed, answering with assistance",
			"provider", c.provider.ID(), "error", err)
	}

	return Classification{Intent: command.IntentAssistance, Source: SourceFallback}
}

func (c *IntentClassifier) classifyWithModel(ctx context.Context, raw string) (command.Intent, error) {
	payload, err := completeJSON(ctx, c.provider, classifySystemPrompt, strings.TrimSpace(raw), classifySchema, classifySchemaJSON)
	if err != nil {
		return "", err
	}
	var out struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return "", fmt.Errorf("decode classification: %w", err)
	}
	return command.ParseIntent(out.Intent)
}
