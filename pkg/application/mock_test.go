package application_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/dictado/pkg/domain/ai"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// MockStore keeps records in memory and records mutations.
type MockStore struct {
	mu       sync.Mutex
	Projects []planning.Project
	Tasks    []planning.Task
	// Err is returned by every call when set.
	Err error
	// Delay is applied to mutations, honouring ctx.
	Delay time.Duration

	Created []string
	Updated []string
	nextID  int
}

func (m *MockStore) wait(ctx context.Context) error {
	if m.Delay == 0 {
		return nil
	}
	select {
	case <-time.After(m.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *MockStore) CreateProject(ctx context.Context, in planning.NewProject) (*planning.Project, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Projects {
		if p.Title == in.Title {
			return nil, &planning.ConflictError{Title: in.Title, ExistingID: p.ID}
		}
	}
	p := planning.Project{ID: m.id("p"), Title: in.Title, Description: in.Description, Priority: in.Priority, DueDate: in.DueDate}
	m.Projects = append(m.Projects, p)
	m.Created = append(m.Created, p.ID)
	return &p, nil
}

func (m *MockStore) CreateTask(ctx context.Context, in planning.NewTask) (*planning.Task, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t := planning.Task{ID: m.id("t"), ProjectID: in.ProjectID, Title: in.Title, Description: in.Description, Status: in.Status, DueDate: in.DueDate}
	m.Tasks = append(m.Tasks, t)
	m.Created = append(m.Created, t.ID)
	return &t, nil
}

func (m *MockStore) FindProjects(ctx context.Context) ([]planning.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]planning.Project(nil), m.Projects...), nil
}

func (m *MockStore) FindTasks(ctx context.Context, filter planning.TaskFilter) ([]planning.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []planning.Task
	for _, t := range m.Tasks {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockStore) UpdateTask(ctx context.Context, id string, patch planning.TaskPatch) (*planning.Task, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for i, t := range m.Tasks {
		if t.ID == id {
			m.Tasks[i] = patch.Apply(t)
			m.Updated = append(m.Updated, id)
			out := m.Tasks[i]
			return &out, nil
		}
	}
	return nil, planning.ErrTaskNotFound
}

func (m *MockStore) UpdateProject(ctx context.Context, id string, patch planning.ProjectPatch) (*planning.Project, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for i, p := range m.Projects {
		if p.ID == id {
			m.Projects[i] = patch.Apply(p)
			m.Updated = append(m.Updated, id)
			out := m.Projects[i]
			return &out, nil
		}
	}
	return nil, planning.ErrProjectNotFound
}

func (m *MockStore) Count(ctx context.Context, kind planning.Kind, filter planning.TaskFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	if kind == planning.KindProject {
		return len(m.Projects), nil
	}
	n := 0
	for _, t := range m.Tasks {
		if filter.Matches(t) {
			n++
		}
	}
	return n, nil
}

// StubProvider answers with Text or fails with Err, counting calls.
type StubProvider struct {
	mu    sync.Mutex
	Text  string
	Err   error
	Block bool
	calls int
}

func (s *StubProvider) ID() string { return "stub" }

func (s *StubProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return &ai.CompletionResponse{Text: s.Text}, nil
}

func (s *StubProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var refTime = time.Date(2024, 7, 8, 10, 0, 0, 0, time.UTC)
