package command_test

import (
	"testing"

	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

func TestSynthesizeTitle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"recuérdame que tengo que llamar al dentista mañana por la tarde", "llamar al dentista", true},
		{"anota revisar uno dos tres cuatro cinco seis siete ocho nueve", "revisar uno dos tres cuatro cinco seis siete", true},
		{"crear tarea para el proyecto Casa", "", false},
		{"crear tarea", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := command.SynthesizeTitle(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("SynthesizeTitle(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestApplyDefaults_CreateTask(t *testing.T) {
	var slots command.SlotSet
	command.ApplyDefaults(command.IntentCreateTask, &slots, "anota llamar a mamá", refDate)

	if slots.Value(command.SlotTitle) != "llamar a mamá" {
		t.Errorf("title = %q", slots.Value(command.SlotTitle))
	}
	if slots.Value(command.SlotDueDate) != "2024-07-15" {
		t.Errorf("dueDate = %q, want ref + 7 days", slots.Value(command.SlotDueDate))
	}
	if slots.Status == nil || *slots.Status != planning.StatusPending {
		t.Errorf("status = %v", slots.Status)
	}
	if slots.Priority != nil {
		t.Error("tasks carry no priority")
	}
	if slots.Description != nil {
		t.Error("description is synthesized at execution")
	}
}

func TestApplyDefaults_CreateProjectKeepsExtracted(t *testing.T) {
	var slots command.SlotSet
	slots.Set(command.SlotTitle, "Apolo", refDate)
	slots.Set(command.SlotPriority, "alta", refDate)
	slots.Set(command.SlotDueDate, "2024-12-31", refDate)

	command.ApplyDefaults(command.IntentCreateProject, &slots, "crear proyecto Apolo", refDate)

	if *slots.Priority != planning.PriorityHigh || *slots.DueDate != "2024-12-31" || *slots.Title != "Apolo" {
		t.Errorf("defaults overwrote extracted slots: %s", slots)
	}
}

func TestApplyDefaults_NeverOnUpdate(t *testing.T) {
	for _, intent := range []command.Intent{command.IntentUpdateTask, command.IntentUpdateProject, command.IntentSearchTask, command.IntentCountTasks} {
		var slots command.SlotSet
		command.ApplyDefaults(intent, &slots, "actualiza la tarea Informe", refDate)
		if slots != (command.SlotSet{}) {
			t.Errorf("%s received defaults: %s", intent, slots)
		}
	}
}

func TestSynthesizeDescription(t *testing.T) {
	if got := command.SynthesizeDescription(command.IntentCreateTask, "Comprar pan", "Casa"); got != `Tarea "Comprar pan" del proyecto "Casa"` {
		t.Errorf("task description = %s", got)
	}
	if got := command.SynthesizeDescription(command.IntentCreateTask, "Comprar pan", ""); got != `Tarea "Comprar pan"` {
		t.Errorf("orphan task description = %s", got)
	}
	if got := command.SynthesizeDescription(command.IntentCreateProject, "Apolo", ""); got != `Proyecto "Apolo"` {
		t.Errorf("project description = %s", got)
	}
}
