package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
	"github.com/felixgeelhaar/dictado/pkg/storage"
)

func backends(t *testing.T) map[string]storage.Backend {
	t.Helper()
	root := t.TempDir()

	fs, err := storage.Open(storage.BackendFilesystem, filepath.Join(root, "fs"), "")
	if err != nil {
		t.Fatalf("open filesystem: %v", err)
	}
	db, err := storage.Open(storage.BackendSQLite, filepath.Join(root, "db"), "")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return map[string]storage.Backend{"filesystem": fs, "sqlite": db}
}

func TestStore_CreateAndFind(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			casa, err := store.CreateProject(ctx, planning.NewProject{Title: "Casa", DueDate: "2024-12-31"})
			if err != nil {
				t.Fatalf("CreateProject: %v", err)
			}
			if casa.ID == "" || casa.Priority != planning.PriorityMedium {
				t.Errorf("unexpected project %+v", casa)
			}

			if _, err := store.CreateTask(ctx, planning.NewTask{Title: "Comprar pan", ProjectID: casa.ID}); err != nil {
				t.Fatalf("CreateTask: %v", err)
			}
			if _, err := store.CreateTask(ctx, planning.NewTask{Title: "Plan de márketing", Status: planning.StatusDone, ProjectID: casa.ID}); err != nil {
				t.Fatalf("CreateTask: %v", err)
			}

			projects, err := store.FindProjects(ctx)
			if err != nil || len(projects) != 1 || projects[0].Title != "Casa" {
				t.Fatalf("FindProjects = %+v, %v", projects, err)
			}

			all, _ := store.FindTasks(ctx, planning.TaskFilter{})
			if len(all) != 2 || all[0].Title != "Comprar pan" || all[0].Status != planning.StatusPending {
				t.Fatalf("FindTasks = %+v", all)
			}

			found, _ := store.FindTasks(ctx, planning.TaskFilter{Text: "marketing"})
			if len(found) != 1 {
				t.Errorf("expected accent-insensitive text match, got %d", len(found))
			}
			done, _ := store.FindTasks(ctx, planning.TaskFilter{Status: planning.StatusDone, ProjectID: casa.ID})
			if len(done) != 1 {
				t.Errorf("expected 1 done task, got %d", len(done))
			}

			n, err := store.Count(ctx, planning.KindTask, planning.TaskFilter{Status: planning.StatusPending})
			if err != nil || n != 1 {
				t.Errorf("Count tasks = %d, %v", n, err)
			}
			n, err = store.Count(ctx, planning.KindProject, planning.TaskFilter{})
			if err != nil || n != 1 {
				t.Errorf("Count projects = %d, %v", n, err)
			}
		})
	}
}

func TestStore_Errors(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p, err := store.CreateProject(ctx, planning.NewProject{Title: "Apolo"})
			if err != nil {
				t.Fatalf("CreateProject: %v", err)
			}

			_, err = store.CreateProject(ctx, planning.NewProject{Title: "apolo "})
			var conflict *planning.ConflictError
			if !errors.As(err, &conflict) || conflict.ExistingID != p.ID {
				t.Errorf("expected conflict with %s, got %v", p.ID, err)
			}
			if !errors.Is(err, planning.ErrDuplicateProject) {
				t.Error("conflict must match ErrDuplicateProject")
			}

			if _, err := store.CreateTask(ctx, planning.NewTask{Title: "x", ProjectID: "missing"}); !errors.Is(err, planning.ErrInvalidInput) {
				t.Errorf("expected invalid input for unknown project, got %v", err)
			}
			if _, err := store.CreateProject(ctx, planning.NewProject{Title: "  "}); !errors.Is(err, planning.ErrInvalidInput) {
				t.Errorf("expected invalid input for empty title, got %v", err)
			}
			if _, err := store.CreateProject(ctx, planning.NewProject{Title: "Z", DueDate: "31/12"}); !errors.Is(err, planning.ErrInvalidInput) {
				t.Errorf("expected invalid input for bad date, got %v", err)
			}

			if _, err := store.UpdateTask(ctx, "nope", planning.TaskPatch{Title: strPtr("x")}); !errors.Is(err, planning.ErrTaskNotFound) {
				t.Errorf("expected ErrTaskNotFound, got %v", err)
			}
			if _, err := store.UpdateProject(ctx, "nope", planning.ProjectPatch{Title: strPtr("x")}); !errors.Is(err, planning.ErrProjectNotFound) {
				t.Errorf("expected ErrProjectNotFound, got %v", err)
			}
		})
	}
}

func TestStore_Update(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			casa, _ := store.CreateProject(ctx, planning.NewProject{Title: "Casa"})
			trabajo, _ := store.CreateProject(ctx, planning.NewProject{Title: "Trabajo"})
			task, err := store.CreateTask(ctx, planning.NewTask{Title: "Informe", DueDate: "2024-07-31", ProjectID: casa.ID})
			if err != nil {
				t.Fatalf("CreateTask: %v", err)
			}

			done := planning.StatusDone
			updated, err := store.UpdateTask(ctx, task.ID, planning.TaskPatch{Status: &done})
			if err != nil {
				t.Fatalf("UpdateTask: %v", err)
			}
			if updated.Status != planning.StatusDone || updated.DueDate != "2024-07-31" || updated.Title != "Informe" {
				t.Errorf("patch touched absent fields: %+v", updated)
			}

			tasks, _ := store.FindTasks(ctx, planning.TaskFilter{})
			if tasks[0].Status != planning.StatusDone {
				t.Error("update not persisted")
			}

			high := planning.PriorityHigh
			if _, err := store.UpdateProject(ctx, trabajo.ID, planning.ProjectPatch{Priority: &high}); err != nil {
				t.Fatalf("UpdateProject: %v", err)
			}
			if _, err := store.UpdateProject(ctx, trabajo.ID, planning.ProjectPatch{Title: strPtr("CASA")}); !errors.Is(err, planning.ErrDuplicateProject) {
				t.Errorf("expected rename conflict, got %v", err)
			}
		})
	}
}

func TestFilesystemStore_Layout(t *testing.T) {
	root := t.TempDir()
	store := storage.NewFilesystemStore(root)
	if store.IsInitialized() {
		t.Fatal("fresh root should not be initialized")
	}

	projects, err := store.FindProjects(context.Background())
	if err != nil || len(projects) != 0 {
		t.Fatalf("expected empty store, got %v, %v", projects, err)
	}

	if _, err := store.CreateProject(context.Background(), planning.NewProject{Title: "Casa"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, storage.DictadoDir, storage.ProjectsFile)); err != nil {
		t.Errorf("expected projects file: %v", err)
	}
	if _, err := store.ResolvePath("../escape.json"); err == nil {
		t.Error("expected traversal to be rejected")
	}
}

func TestFilesystemStore_CorruptFile(t *testing.T) {
	root := t.TempDir()
	store := storage.NewFilesystemStore(root)
	if err := store.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, storage.DictadoDir, storage.TasksFile), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.FindTasks(context.Background(), planning.TaskFilter{}); err == nil {
		t.Error("expected decode error")
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := storage.Open("postgres", t.TempDir(), ""); err == nil {
		t.Error("expected error")
	}
}

func strPtr(s string) *string { return &s }
