package planning

import "context"

// Store is the persistence collaborator consumed by the interpreter. Every
// call is synchronous from the caller's point of view and must honour ctx.
type Store interface {
	// CreateProject returns a *ConflictError when the title is already taken.
	CreateProject(ctx context.Context, in NewProject) (*Project, error)
	// CreateTask returns a *ValidationError when the input is unusable.
	CreateTask(ctx context.Context, in NewTask) (*Task, error)
	FindProjects(ctx context.Context) ([]Project, error)
	FindTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	// UpdateTask returns ErrTaskNotFound for unknown ids.
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error)
	// UpdateProject returns ErrProjectNotFound for unknown ids.
	UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*Project, error)
	Count(ctx context.Context, kind Kind, filter TaskFilter) (int, error)
}

// LoadSnapshot reads every project and task from the store.
func LoadSnapshot(ctx context.Context, store Store) (Snapshot, error) {
	projects, err := store.FindProjects(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	tasks, err := store.FindTasks(ctx, TaskFilter{})
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Projects: projects, Tasks: tasks}, nil
}
