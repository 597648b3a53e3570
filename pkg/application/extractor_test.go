package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/dictado/pkg/application"
	"github.com/felixgeelhaar/dictado/pkg/domain/command"
)

func TestSlotExtractor_ModelFirstRulesFillGaps(t *testing.T) {
	provider := &StubProvider{Text: `{"title":"Pan integral","status":null,"projectReference":"Casa","referenceText":"ignorado"}`}
	e := application.NewSlotExtractor(provider, nil)

	got := e.Extract(context.Background(), command.IntentCreateTask, "crear tarea Comprar pan mañana", refTime)

	if v := got.Slots.Value(command.SlotTitle); v != "Pan integral" {
		t.Errorf("expected model title, got %q", v)
	}
	if v := got.Slots.Value(command.SlotProjectReference); v != "Casa" {
		t.Errorf("expected model project reference, got %q", v)
	}
	if v := got.Slots.Value(command.SlotDueDate); v != "2024-07-09" {
		t.Errorf("expected rule due date 2024-07-09, got %q", v)
	}
	if v := got.Slots.Value(command.SlotStatus); v != "pending" {
		t.Errorf("expected default status, got %q", v)
	}
	if got.Slots.Has(command.SlotReferenceText) {
		t.Error("undeclared slot leaked from model answer")
	}
	if len(got.ModelSlots) != 2 {
		t.Errorf("expected 2 model slots, got %v", got.ModelSlots)
	}
}

func TestSlotExtractor_FallsBackToRules(t *testing.T) {
	providers := map[string]*StubProvider{
		"unavailable":   {Err: errors.New("timeout")},
		"malformed":     {Text: `title: Comprar pan`},
		"schema breach": {Text: `{"title": 42}`},
	}

	for name, provider := range providers {
		t.Run(name, func(t *testing.T) {
			e := application.NewSlotExtractor(provider, nil)
			got := e.Extract(context.Background(), command.IntentCreateTask, "crear tarea Comprar pan", refTime)
			if v := got.Slots.Value(command.SlotTitle); v != "Comprar pan" {
				t.Errorf("expected rule title, got %q", v)
			}
			if len(got.ModelSlots) != 0 {
				t.Errorf("expected no model slots, got %v", got.ModelSlots)
			}
			if len(got.Rules) == 0 {
				t.Error("expected rules to fire")
			}
		})
	}
}

func TestSlotExtractor_InvalidModelValueDiscarded(t *testing.T) {
	e := application.NewSlotExtractor(&StubProvider{Text: `{"priority":"gigantesca"}`}, nil)
	got := e.Extract(context.Background(), command.IntentCreateProject, "crear proyecto Apolo con prioridad alta", refTime)
	if v := got.Slots.Value(command.SlotPriority); v != "high" {
		t.Errorf("expected rule priority high, got %q", v)
	}
}

func TestSlotExtractor_NoDefaultsOutsideCreate(t *testing.T) {
	e := application.NewSlotExtractor(nil, nil)
	got := e.Extract(context.Background(), command.IntentUpdateTask, "actualizar la tarea Fénix", refTime)
	if got.Slots.Has(command.SlotDueDate) || got.Slots.Has(command.SlotStatus) || got.Slots.Has(command.SlotTitle) {
		t.Errorf("update received defaults: %s", got.Slots)
	}
	if v := got.Slots.Value(command.SlotReferenceText); v != "Fénix" {
		t.Errorf("expected reference Fénix, got %q", v)
	}
}

func TestSlotExtractor_AssistanceHasNoSlots(t *testing.T) {
	provider := &StubProvider{Text: `{}`}
	e := application.NewSlotExtractor(provider, nil)
	got := e.Extract(context.Background(), command.IntentAssistance, "hola", refTime)
	if got.Slots.String() != "{}" {
		t.Errorf("expected empty slots, got %s", got.Slots)
	}
	if provider.Calls() != 0 {
		t.Error("model consulted for an intent without slots")
	}
}
