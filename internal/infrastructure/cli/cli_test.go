package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// runCLI executes the root command with args against a fresh flag state and
// returns what the command wrote to its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	defer RootCmd.SetArgs(nil)

	err := RootCmd.Execute()
	return out.String(), err
}

func resetFlags() {
	projectPath, logLevel, logFormat = "", "", ""
	initBackend = ""
	sayIntent, sayProject, sayJSON = "", "", false
	projectsJSON = false
	tasksStatus, tasksProject, tasksQuery, tasksJSON = "", "", "", false
	statsJSON = false
	serveAddr = ""
	mcpTransport, mcpAddr = "stdio", ":8090"
	if f := RootCmd.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
	}
}

func TestInitCreatesWorkspace(t *testing.T) {
	for _, backend := range []string{"filesystem", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			out, err := runCLI(t, "-C", dir, "init", "--backend", backend)
			if err != nil {
				t.Fatalf("init failed: %v", err)
			}
			if !strings.Contains(out, "Successfully initialized") || !strings.Contains(out, backend) {
				t.Errorf("unexpected output: %q", out)
			}
			if _, err := os.Stat(filepath.Join(dir, ".dictado", "config.yaml")); err != nil {
				t.Errorf("expected config file: %v", err)
			}
		})
	}
}

func TestInitRejectsUnknownBackend(t *testing.T) {
	if _, err := runCLI(t, "-C", t.TempDir(), "init", "--backend", "postgres"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestSayFlow(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "-C", dir, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := runCLI(t, "-C", dir, "say", "crear", "proyecto", "Casa")
	if err != nil {
		t.Fatalf("say: %v", err)
	}
	if !strings.Contains(out, "✓") || !strings.Contains(out, "intent=createProject") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = runCLI(t, "-C", dir, "say", "--json", "crear tarea Comprar pan en el proyecto Casa")
	if err != nil {
		t.Fatalf("say: %v", err)
	}
	var result command.CommandResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode json output: %v\n%s", err, out)
	}
	if !result.Success || result.Task == nil || result.Task.Title != "Comprar pan" {
		t.Fatalf("unexpected result: %+v", result)
	}

	out, err = runCLI(t, "-C", dir, "tasks", "--project", "casa", "--status", "pendiente")
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if !strings.Contains(out, "Comprar pan") || !strings.Contains(out, "Tasks (1)") {
		t.Errorf("unexpected tasks output: %q", out)
	}

	out, err = runCLI(t, "-C", dir, "projects", "--json")
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	var projects []planning.Project
	if err := json.Unmarshal([]byte(out), &projects); err != nil || len(projects) != 1 {
		t.Fatalf("unexpected projects output: %q (%v)", out, err)
	}

	out, err = runCLI(t, "-C", dir, "stats", "--json")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats statsOutput
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Projects != 1 || stats.Tasks != 1 || stats.ByStatus["pending"] != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSayFailureIsRendered(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "-C", dir, "say", "actualizar la tarea Fénix")
	if err != nil {
		t.Fatalf("say: %v", err)
	}
	if !strings.Contains(out, "✗") || !strings.Contains(out, "error=") {
		t.Errorf("expected failure rendering, got %q", out)
	}
}

func TestSayUnknownIntent(t *testing.T) {
	_, err := runCLI(t, "-C", t.TempDir(), "say", "--intent", "borrarTodo", "hola")
	var cliErr *CLIError
	if !errors.As(err, &cliErr) || !strings.Contains(cliErr.Hint, "createTask") {
		t.Fatalf("expected CLIError listing intents, got %v", err)
	}
}

func TestTasksErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "-C", dir, "tasks", "--status", "archivada"); err == nil {
		t.Error("expected error for unknown status")
	}
	_, err := runCLI(t, "-C", dir, "tasks", "--project", "Nada")
	if !errors.Is(err, planning.ErrProjectNotFound) {
		t.Errorf("expected project not found, got %v", err)
	}
}

func TestEmptyListings(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "-C", dir, "projects")
	if err != nil || !strings.Contains(out, "No projects yet.") {
		t.Errorf("unexpected projects output: %q, %v", out, err)
	}
	out, err = runCLI(t, "-C", dir, "stats")
	if err != nil || !strings.Contains(out, "Projects: 0") {
		t.Errorf("unexpected stats output: %q, %v", out, err)
	}
}

func TestInvalidProjectPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "-C", file, "projects"); err == nil {
		t.Fatal("expected error for non-directory path")
	}
}

func TestInvalidLogFlag(t *testing.T) {
	if _, err := runCLI(t, "-C", t.TempDir(), "--log-format", "xml", "projects"); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

func TestMCPUnsupportedTransport(t *testing.T) {
	if _, err := runCLI(t, "-C", t.TempDir(), "mcp", "--transport", "ws"); err == nil {
		t.Fatal("expected error for unsupported transport")
	}
}

func TestMCPSkipStart(t *testing.T) {
	t.Setenv("DICTADO_SKIP_MCP_START", "true")
	if _, err := runCLI(t, "mcp"); err != nil {
		t.Fatalf("expected skip, got %v", err)
	}
}

func TestHelp(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, name := range []string{"say", "projects", "tasks", "stats", "serve", "mcp", "init"} {
		if !strings.Contains(out, name) {
			t.Errorf("help missing %s", name)
		}
	}
}

func TestCLIError(t *testing.T) {
	t.Run("Error with cause", func(t *testing.T) {
		cause := errors.New("root cause")
		e := NewCLIError("something failed", "try this", cause)
		if e.Error() != "something failed: root cause" {
			t.Fatalf("unexpected: %s", e.Error())
		}
		if e.ExitCode != 1 {
			t.Fatalf("expected exit code 1, got %d", e.ExitCode)
		}
	})

	t.Run("Error without cause", func(t *testing.T) {
		e := NewCLIError("something failed", "try this", nil)
		if e.Error() != "something failed" {
			t.Fatalf("unexpected: %s", e.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root")
		e := NewCLIError("msg", "", cause)
		if !errors.Is(e, cause) {
			t.Fatal("errors.Is should match wrapped cause")
		}
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint string
		wantCLI  bool
	}{
		{name: "nil returns nil"},
		{
			name:     "conflict",
			err:      fmt.Errorf("create: %w", &planning.ConflictError{Title: "Casa", ExistingID: "p-1"}),
			wantHint: "Choose a different title or update the existing project",
			wantCLI:  true,
		},
		{
			name:     "validation",
			err:      &planning.ValidationError{Field: "dueDate", Reason: "expected YYYY-MM-DD"},
			wantHint: "Check the value given for 'dueDate'",
			wantCLI:  true,
		},
		{
			name:     "project not found",
			err:      fmt.Errorf("%w: p-9", planning.ErrProjectNotFound),
			wantHint: "Run 'dictado projects' to list available projects",
			wantCLI:  true,
		},
		{
			name:     "task not found",
			err:      planning.ErrTaskNotFound,
			wantHint: "Run 'dictado tasks' to list available tasks",
			wantCLI:  true,
		},
		{
			name: "unmapped passes through",
			err:  errors.New("disk on fire"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			var cliErr *CLIError
			isCLI := errors.As(got, &cliErr)
			if isCLI != tt.wantCLI {
				t.Fatalf("CLIError = %v, want %v", isCLI, tt.wantCLI)
			}
			if isCLI && cliErr.Hint != tt.wantHint {
				t.Errorf("hint = %q, want %q", cliErr.Hint, tt.wantHint)
			}
			if !errors.Is(got, tt.err) {
				t.Error("mapped error must wrap the original")
			}
		})
	}
}

func TestRenderResult(t *testing.T) {
	var buf bytes.Buffer
	renderResult(&buf, command.CommandResult{
		Success:   true,
		Intent:    command.IntentAssistance,
		Action:    command.ActionAssistance,
		ErrorKind: command.ErrorClassificationAmbiguous,
		Message:   "Puedo crear, buscar, actualizar o contar.",
	})
	out := buf.String()
	if !strings.Contains(out, "? Puedo crear") || !strings.Contains(out, "error=ClassificationAmbiguous") {
		t.Errorf("unexpected render: %q", out)
	}
	if strings.Contains(out, "slots=") {
		t.Errorf("empty slots should be omitted: %q", out)
	}
}
