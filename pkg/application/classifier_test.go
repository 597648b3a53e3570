package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	infraAI "github.com/felixgeelhaar/dictado/pkg/ai"
	"github.com/felixgeelhaar/dictado/pkg/application"
	"github.com/felixgeelhaar/dictado/pkg/domain/command"
)

func TestIntentClassifier_RuleWinsOverModel(t *testing.T) {
	provider := &StubProvider{Text: `{"intent":"countProjects"}`}
	c := application.NewIntentClassifier(provider, nil)

	got := c.Classify(context.Background(), "crear tarea Comprar pan")
	if got.Intent != command.IntentCreateTask {
		t.Errorf("expected createTask, got %s", got.Intent)
	}
	if got.Source != application.SourceRule || got.Rule == "" {
		t.Errorf("expected a named rule source, got %+v", got)
	}
	if provider.Calls() != 0 {
		t.Errorf("model must not be consulted when a rule matches, got %d calls", provider.Calls())
	}
}

func TestIntentClassifier_ModelFallback(t *testing.T) {
	tests := []struct {
		name       string
		provider   *StubProvider
		wantIntent command.Intent
		wantSource application.ClassificationSource
	}{
		{
			name:       "valid answer",
			provider:   &StubProvider{Text: `{"intent":"countTasks"}`},
			wantIntent: command.IntentCountTasks,
			wantSource: application.SourceModel,
		},
		{
			name:       "fenced answer",
			provider:   &StubProvider{Text: "```json\n{\"intent\": \"searchProject\"}\n```"},
			wantIntent: command.IntentSearchProject,
			wantSource: application.SourceModel,
		},
		{
			name:       "unknown intent",
			provider:   &StubProvider{Text: `{"intent":"deleteEverything"}`},
			wantIntent: command.IntentAssistance,
			wantSource: application.SourceFallback,
		},
		{
			name:       "malformed",
			provider:   &StubProvider{Text: `createTask, probably`},
			wantIntent: command.IntentAssistance,
			wantSource: application.SourceFallback,
		},
		{
			name:       "provider error",
			provider:   &StubProvider{Err: errors.New("connection refused")},
			wantIntent: command.IntentAssistance,
			wantSource: application.SourceFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := application.NewIntentClassifier(tt.provider, nil)
			got := c.Classify(context.Background(), "hola, ¿qué tal?")
			if got.Intent != tt.wantIntent || got.Source != tt.wantSource {
				t.Errorf("got %+v, want %s from %s", got, tt.wantIntent, tt.wantSource)
			}
			if tt.provider.Calls() != 1 {
				t.Errorf("expected exactly one model call, got %d", tt.provider.Calls())
			}
		})
	}
}

func TestIntentClassifier_NoProvider(t *testing.T) {
	c := application.NewIntentClassifier(nil, nil)
	got := c.Classify(context.Background(), "el cielo es azul")
	if got.Intent != command.IntentAssistance || !got.Ambiguous() {
		t.Errorf("expected ambiguous assistance, got %+v", got)
	}
}

func TestIntentClassifier_ModelTimeout(t *testing.T) {
	provider := infraAI.NewResilientProviderWithConfig(&StubProvider{Block: true}, infraAI.ResilienceConfig{
		Timeout: 20 * time.Millisecond,
	})
	c := application.NewIntentClassifier(provider, nil)

	start := time.Now()
	got := c.Classify(context.Background(), "hola, ¿qué tal?")
	if got.Intent != command.IntentAssistance {
		t.Errorf("expected assistance after timeout, got %s", got.Intent)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("classification was not bounded by the timeout")
	}
}
