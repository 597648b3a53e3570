package mcp

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/dictado/internal/infrastructure/config"
	"github.com/felixgeelhaar/dictado/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	services, err := wiring.BuildAppServicesWithProvider(t.TempDir(), config.Default(), nil, wiring.LoadAIProvider)
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	t.Cleanup(func() { _ = services.Close() })

	s, err := NewServer(services)
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	return s
}

func TestServer_Handlers(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleProcess(ctx, ProcessArgs{Text: "crear proyecto Casa"})
	if err != nil {
		t.Fatalf("handleProcess failed: %v", err)
	}
	result, ok := resp.(command.CommandResult)
	if !ok || !result.Success || result.Project == nil {
		t.Fatalf("unexpected response: %#v", resp)
	}

	resp, err = s.handleProcess(ctx, ProcessArgs{Text: "crear tarea Comprar pan", ProjectID: result.Project.ID})
	if err != nil {
		t.Fatalf("handleProcess failed: %v", err)
	}
	if r := resp.(command.CommandResult); !r.Success || r.Task == nil || r.Task.ProjectID != result.Project.ID {
		t.Fatalf("task not created in hinted project: %#v", r)
	}

	projects, err := s.handleListProjects(ctx, struct{}{})
	if err != nil {
		t.Fatalf("handleListProjects failed: %v", err)
	}
	if got := projects.([]planning.Project); len(got) != 1 {
		t.Errorf("expected 1 project, got %d", len(got))
	}

	tasks, err := s.handleListTasks(ctx, ListTasksArgs{Status: "pendiente", Query: "pan"})
	if err != nil {
		t.Fatalf("handleListTasks failed: %v", err)
	}
	if got := tasks.([]planning.Task); len(got) != 1 || got[0].Title != "Comprar pan" {
		t.Errorf("unexpected tasks: %+v", got)
	}
}

func TestServer_HandleProcessWithIntentHint(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleProcess(context.Background(), ProcessArgs{Text: "Casa", Intent: "createProject"})
	if err != nil {
		t.Fatalf("handleProcess failed: %v", err)
	}
	if r := resp.(command.CommandResult); r.Intent != command.IntentCreateProject {
		t.Errorf("expected hinted intent, got %s", r.Intent)
	}
}

func TestServer_HandlerErrors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	if _, err := s.handleProcess(ctx, ProcessArgs{Text: "  "}); err == nil {
		t.Error("expected error for empty transcript")
	}
	if _, err := s.handleProcess(ctx, ProcessArgs{Text: "hola", Intent: "deleteEverything"}); err == nil {
		t.Error("expected error for unknown intent")
	}
	if _, err := s.handleListTasks(ctx, ListTasksArgs{Status: "archivada"}); err == nil {
		t.Error("expected error for unknown status")
	}

	tasks, err := s.handleListTasks(ctx, ListTasksArgs{})
	if err != nil {
		t.Fatalf("handleListTasks failed: %v", err)
	}
	if got := tasks.([]planning.Task); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
}

func TestDescribeIntents(t *testing.T) {
	resp := describeIntents()
	if len(resp.Intents) != len(command.AllIntents()) {
		t.Fatalf("expected every intent, got %d", len(resp.Intents))
	}
	for _, d := range resp.Intents {
		if d.Slots == nil {
			t.Errorf("%s: slots must not be nil", d.Intent)
		}
	}
}

func TestNewServer_NilServices(t *testing.T) {
	if _, err := NewServer(nil); err == nil {
		t.Fatal("expected error for nil services")
	}
}
