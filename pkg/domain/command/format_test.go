package command_test

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

func countResult(total int, byStatus map[planning.TaskStatus]int) command.CommandResult {
	summary := &command.CountSummary{Kind: planning.KindTask, Total: total}
	for _, s := range planning.AllTaskStatuses() {
		summary.ByCategory = append(summary.ByCategory, command.CategoryCount{Category: string(s), Count: byStatus[s]})
	}
	return command.CommandResult{Success: true, Intent: command.IntentCountTasks, Action: command.ActionTaskCounted, Count: summary}
}

func TestFormat_CountAgreement(t *testing.T) {
	f := command.NewFormatter(3)

	zero := f.Format(countResult(0, nil))
	one := f.Format(countResult(1, map[planning.TaskStatus]int{planning.StatusPending: 1}))
	two := f.Format(countResult(2, map[planning.TaskStatus]int{planning.StatusPending: 1, planning.StatusDone: 1}))

	if zero != "No tienes tareas." {
		t.Errorf("zero = %q", zero)
	}
	if one != "Tienes una sola tarea (pendiente)." {
		t.Errorf("one = %q", one)
	}
	if two != "Tienes 2 tareas: 1 pendiente y 1 completada." {
		t.Errorf("two = %q", two)
	}
	if zero == one || one == two || zero == two {
		t.Error("count forms must be distinct")
	}
}

func TestFormat_CountWithFilterAndScope(t *testing.T) {
	f := command.NewFormatter(3)
	r := countResult(3, map[planning.TaskStatus]int{planning.StatusPending: 3})
	r.Count.Filter = string(planning.StatusPending)
	r.Count.Scope = "Casa"

	if got := f.Format(r); got != `Tienes 3 tareas pendientes en el proyecto "Casa".` {
		t.Errorf("got %q", got)
	}

	projects := command.CommandResult{
		Success: true,
		Intent:  command.IntentCountProjects,
		Count: &command.CountSummary{
			Kind:  planning.KindProject,
			Total: 3,
			ByCategory: []command.CategoryCount{
				{Category: "low", Count: 0},
				{Category: "medium", Count: 1},
				{Category: "high", Count: 2},
			},
		},
	}
	if got := f.Format(projects); got != "Tienes 3 proyectos: 1 de prioridad media y 2 de prioridad alta." {
		t.Errorf("got %q", got)
	}
}

func TestFormat_SearchPreview(t *testing.T) {
	f := command.NewFormatter(3)
	search := &command.SearchResults{Query: "informe", Total: 5}
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		search.Tasks = append(search.Tasks, planning.Task{Title: title})
	}
	r := command.CommandResult{Success: true, Intent: command.IntentSearchTask, Search: search}

	if got := f.Format(r); got != `Encontré 5 tareas: "A", "B", "C" y 2 más.` {
		t.Errorf("got %q", got)
	}

	r.Search = &command.SearchResults{Query: "informe", Total: 1, Tasks: []planning.Task{{Title: "A"}}}
	if got := f.Format(r); got != `Encontré 1 tarea: "A".` {
		t.Errorf("got %q", got)
	}

	r.Search = &command.SearchResults{Query: "fénix"}
	if got := f.Format(r); got != `No encontré tareas que coincidan con "fénix".` {
		t.Errorf("got %q", got)
	}
}

func TestFormat_Created(t *testing.T) {
	f := command.NewFormatter(3)
	r := command.CommandResult{
		Success:   true,
		Intent:    command.IntentCreateTask,
		Action:    command.ActionTaskCreated,
		Task:      &planning.Task{Title: "Comprar pan", DueDate: "2024-07-15"},
		Reference: &command.ResolvedReference{Title: "Casa", MatchStrategy: command.MatchFallback},
	}
	got := f.Format(r)
	if !strings.HasPrefix(got, `Tarea "Comprar pan" creada en el proyecto "Casa" para el 2024-07-15.`) {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "usé") {
		t.Errorf("fallback guess should be disclosed: %q", got)
	}
}

func TestFormat_Failures(t *testing.T) {
	f := command.NewFormatter(3)
	tests := []struct {
		name    string
		intent  command.Intent
		failure command.Failure
		want    string
	}{
		{
			name:    "unknown update target",
			intent:  command.IntentUpdateTask,
			failure: command.Failure{Kind: command.ErrorExtractionIncomplete, Entity: planning.KindTask, Slot: command.SlotReferenceText},
			want:    "No pude identificar qué tarea deseas actualizar.",
		},
		{
			name:    "task not found",
			intent:  command.IntentUpdateTask,
			failure: command.Failure{Kind: command.ErrorEntityNotFound, Entity: planning.KindTask, Reference: "Fénix"},
			want:    `No encontré ninguna tarea parecida a "Fénix".`,
		},
		{
			name:    "duplicate project",
			intent:  command.IntentCreateProject,
			failure: command.Failure{Kind: command.ErrorValidationConflict, Entity: planning.KindProject, Slot: command.SlotTitle, Value: "Apolo"},
			want:    `Ya existe un proyecto llamado "Apolo".`,
		},
		{
			name:    "no projects to attach to",
			intent:  command.IntentCreateTask,
			failure: command.Failure{Kind: command.ErrorEntityNotFound, Entity: planning.KindProject},
			want:    `No hay proyectos disponibles. Crea primero uno con "crear proyecto <nombre>".`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failure := tt.failure
			r := command.Failed(tt.intent, &failure)
			if r.ErrorKind != tt.failure.Kind {
				t.Errorf("ErrorKind = %s", r.ErrorKind)
			}
			if got := f.Format(r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFailed_WrapsPlainErrors(t *testing.T) {
	r := command.Failed(command.IntentCreateTask, planning.ErrInvalidInput)
	if r.Success || r.ErrorKind != command.ErrorExternalServiceFailure {
		t.Errorf("unexpected result: %+v", r)
	}
	if msg := command.NewFormatter(0).Format(r); !strings.Contains(msg, "Inténtalo de nuevo") {
		t.Errorf("message = %q", msg)
	}
}
