package planning

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/dictado/pkg/domain/language"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Kind names the two record families held by the store.
type Kind string

const (
	KindProject Kind = "project"
	KindTask    Kind = "task"
)

// Project is a container of tasks. Values handed to the interpreter are
// snapshots and are never mutated by it.
type Project struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	Priority    TaskPriority `json:"priority" yaml:"priority"`
	DueDate     string       `json:"due_date,omitempty" yaml:"due_date,omitempty"` // YYYY-MM-DD
	CreatedAt   time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" yaml:"updated_at"`
}

// Task is a unit of work inside a project.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	ProjectID   string     `json:"project_id" yaml:"project_id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Status      TaskStatus `json:"status" yaml:"status"`
	DueDate     string     `json:"due_date,omitempty" yaml:"due_date,omitempty"` // YYYY-MM-DD
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
}

// Snapshot is the read-only view of the store supplied to one pipeline run.
type Snapshot struct {
	Projects []Project `json:"projects"`
	Tasks    []Task    `json:"tasks"`
}

// ProjectByID returns the project with the given id, if present.
func (s Snapshot) ProjectByID(id string) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// TaskByID returns the task with the given id, if present.
func (s Snapshot) TaskByID(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// NewProject carries the fields required to create a project.
type NewProject struct {
	Title       string
	Description string
	Priority    TaskPriority
	DueDate     string
}

// NewTask carries the fields required to create a task.
type NewTask struct {
	Title       string
	Description string
	Status      TaskStatus
	DueDate     string
	ProjectID   string
}

// TaskPatch lists the task fields to change; nil fields stay untouched.
type TaskPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	DueDate     *string     `json:"due_date,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.DueDate == nil
}

// Apply returns a copy of t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	return t
}

// ProjectPatch lists the project fields to change; nil fields stay untouched.
type ProjectPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *string       `json:"due_date,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ProjectPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.DueDate == nil
}

// Apply returns a copy of pr with the patch applied.
func (p ProjectPatch) Apply(pr Project) Project {
	if p.Title != nil {
		pr.Title = *p.Title
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Priority != nil {
		pr.Priority = *p.Priority
	}
	if p.DueDate != nil {
		pr.DueDate = *p.DueDate
	}
	return pr
}

// TaskFilter narrows a task query. Empty fields match everything.
type TaskFilter struct {
	Text      string     `json:"text,omitempty"`
	Status    TaskStatus `json:"status,omitempty"`
	ProjectID string     `json:"project_id,omitempty"`
}

// Matches reports whether t satisfies the filter. Text is a folded substring
// match against title and description.
func (f TaskFilter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	return containsFolded(f.Text, t.Title, t.Description)
}

// ProjectFilter narrows a project query. Empty fields match everything.
type ProjectFilter struct {
	Text     string       `json:"text,omitempty"`
	Priority TaskPriority `json:"priority,omitempty"`
}

// Matches reports whether p satisfies the filter.
func (f ProjectFilter) Matches(p Project) bool {
	if f.Priority != "" && p.Priority != f.Priority {
		return false
	}
	return containsFolded(f.Text, p.Title, p.Description)
}

func containsFolded(needle string, haystacks ...string) bool {
	needle = language.Normalize(needle)
	if needle == "" {
		return true
	}
	for _, h := range haystacks {
		if strings.Contains(language.Normalize(h), needle) {
			return true
		}
	}
	return false
}
