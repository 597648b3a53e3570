package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

const DictadoDir = ".dictado"
const ProjectsFile = "projects.json"
const TasksFile = "tasks.json"

// FilesystemStore keeps projects and tasks as JSON files under
// <root>/.dictado. Writes are serialized by a mutex; reads retry briefly
// to ride over a concurrent rewrite.
type FilesystemStore struct {
	root        string
	retryConfig retry.Config
	mu          sync.Mutex
	now         func() time.Time
}

func NewFilesystemStore(root string) *FilesystemStore {
	return &FilesystemStore{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		now: time.Now,
	}
}

// Root returns the workspace root directory.
func (r *FilesystemStore) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .dictado directory and prevents traversal.
func (r *FilesystemStore) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, DictadoDir)
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}
	return cleanPath, nil
}

func (r *FilesystemStore) Initialize() error {
	path := filepath.Join(r.root, DictadoDir)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", DictadoDir, err)
	}
	return nil
}

func (r *FilesystemStore) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, DictadoDir))
	return err == nil
}

func (r *FilesystemStore) Close() error {
	return nil
}

func (r *FilesystemStore) CreateProject(ctx context.Context, in planning.NewProject) (*planning.Project, error) {
	if err := validateNewProject(&in); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	key := titleKey(in.Title)
	for _, p := range projects {
		if titleKey(p.Title) == key {
			return nil, &planning.ConflictError{Title: p.Title, ExistingID: p.ID}
		}
	}

	now := r.now().UTC()
	p := planning.Project{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.save(ProjectsFile, append(projects, p)); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *FilesystemStore) CreateTask(ctx context.Context, in planning.NewTask) (*planning.Task, error) {
	if err := validateNewTask(&in); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	if !containsProject(projects, in.ProjectID) {
		return nil, &planning.ValidationError{Field: "projectId", Reason: "unknown project " + in.ProjectID}
	}
	tasks, err := r.loadTasks(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	t := planning.Task{
		ID:          uuid.NewString(),
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.save(TasksFile, append(tasks, t)); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *FilesystemStore) FindProjects(ctx context.Context) ([]planning.Project, error) {
	return r.loadProjects(ctx)
}

func (r *FilesystemStore) FindTasks(ctx context.Context, filter planning.TaskFilter) ([]planning.Task, error) {
	tasks, err := r.loadTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := tasks[:0]
	for _, t := range tasks {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *FilesystemStore) UpdateTask(ctx context.Context, id string, patch planning.TaskPatch) (*planning.Task, error) {
	if err := validateTaskPatch(patch); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.loadTasks(ctx)
	if err != nil {
		return nil, err
	}
	for i, t := range tasks {
		if t.ID != id {
			continue
		}
		updated := patch.Apply(t)
		updated.UpdatedAt = r.now().UTC()
		tasks[i] = updated
		if err := r.save(TasksFile, tasks); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", planning.ErrTaskNotFound, id)
}

func (r *FilesystemStore) UpdateProject(ctx context.Context, id string, patch planning.ProjectPatch) (*planning.Project, error) {
	if err := validateProjectPatch(patch); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, p := range projects {
		if p.ID == id {
			idx = i
		} else if patch.Title != nil && titleKey(p.Title) == titleKey(*patch.Title) {
			return nil, &planning.ConflictError{Title: p.Title, ExistingID: p.ID}
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", planning.ErrProjectNotFound, id)
	}

	updated := patch.Apply(projects[idx])
	updated.UpdatedAt = r.now().UTC()
	projects[idx] = updated
	if err := r.save(ProjectsFile, projects); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *FilesystemStore) Count(ctx context.Context, kind planning.Kind, filter planning.TaskFilter) (int, error) {
	if kind == planning.KindProject {
		projects, err := r.loadProjects(ctx)
		if err != nil {
			return 0, err
		}
		pf := planning.ProjectFilter{Text: filter.Text}
		n := 0
		for _, p := range projects {
			if pf.Matches(p) {
				n++
			}
		}
		return n, nil
	}
	tasks, err := r.FindTasks(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}

func (r *FilesystemStore) loadProjects(ctx context.Context) ([]planning.Project, error) {
	return loadJSON[planning.Project](ctx, r, ProjectsFile)
}

func (r *FilesystemStore) loadTasks(ctx context.Context) ([]planning.Task, error) {
	return loadJSON[planning.Task](ctx, r, TasksFile)
}

// loadJSON reads a record file; a missing file holds no records.
func loadJSON[T any](ctx context.Context, r *FilesystemStore, name string) ([]T, error) {
	retryer := retry.New[[]T](r.retryConfig)

	return retryer.Do(ctx, func(ctx context.Context) ([]T, error) {
		path, err := r.ResolvePath(name)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var records []T
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", name, err)
		}
		return records, nil
	})
}

// save writes records atomically through a temporary file.
func (r *FilesystemStore) save(name string, records any) error {
	if err := r.Initialize(); err != nil {
		return err
	}
	path, err := r.ResolvePath(name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmp := path + ".tmp"
	// G306: Use 0600 for files
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func containsProject(projects []planning.Project, id string) bool {
	for _, p := range projects {
		if p.ID == id {
			return true
		}
	}
	return false
}
