package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// SQLiteStore keeps projects and tasks in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex // serializes writes to avoid SQLITE_BUSY
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.Initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

// Initialize creates the schema if it does not exist.
func (s *SQLiteStore) Initialize() error {
	query := `
	PRAGMA busy_timeout = 5000;
	PRAGMA foreign_keys = ON;
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		title_key TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL,
		due_date TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		due_date TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// IsInitialized reports whether the database answers.
func (s *SQLiteStore) IsInitialized() bool {
	return s.db.Ping() == nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateProject(ctx context.Context, in planning.NewProject) (*planning.Project, error) {
	if err := validateNewProject(&in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := titleKey(in.Title)
	var existingID, existingTitle string
	err := s.db.QueryRowContext(ctx, `SELECT id, title FROM projects WHERE title_key = ?`, key).Scan(&existingID, &existingTitle)
	switch {
	case err == nil:
		return nil, &planning.ConflictError{Title: existingTitle, ExistingID: existingID}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("check project title: %w", err)
	}

	now := s.now().UTC()
	p := planning.Project{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   now.Truncate(time.Second),
		UpdatedAt:   now.Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO projects (id, title, title_key, description, priority, due_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, key, p.Description, string(p.Priority), p.DueDate, now.Unix(), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) CreateTask(ctx context.Context, in planning.NewTask) (*planning.Task, error) {
	if err := validateNewTask(&in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM projects WHERE id = ?`, in.ProjectID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check project: %w", err)
	}
	if exists == 0 {
		return nil, &planning.ValidationError{Field: "projectId", Reason: "unknown project " + in.ProjectID}
	}

	now := s.now().UTC()
	t := planning.Task{
		ID:          uuid.NewString(),
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
		CreatedAt:   now.Truncate(time.Second),
		UpdatedAt:   now.Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO tasks (id, project_id, title, description, status, due_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), t.DueDate, now.Unix(), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &t, nil
}

func (s *SQLiteStore) FindProjects(ctx context.Context) ([]planning.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, priority, due_date, created_at, updated_at
		FROM projects ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err is checked below

	var out []planning.Project
	for rows.Next() {
		var p planning.Project
		var priority string
		var createdAt, updatedAt int64
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &priority, &p.DueDate, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		p.Priority = planning.TaskPriority(priority)
		p.CreatedAt = time.Unix(createdAt, 0).UTC()
		p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindTasks narrows by status and project in SQL; the text filter uses the
// same accent-insensitive match as the rest of the system.
func (s *SQLiteStore) FindTasks(ctx context.Context, filter planning.TaskFilter) ([]planning.Task, error) {
	query := `SELECT id, project_id, title, description, status, due_date, created_at, updated_at FROM tasks WHERE 1 = 1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, filter.ProjectID)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err is checked below

	var out []planning.Task
	for rows.Next() {
		var t planning.Task
		var status string
		var createdAt, updatedAt int64
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &t.DueDate, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		t.Status = planning.TaskStatus(status)
		t.CreatedAt = time.Unix(createdAt, 0).UTC()
		t.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, id string, patch planning.TaskPatch) (*planning.Task, error) {
	if err := validateTaskPatch(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.FindTasks(ctx, planning.TaskFilter{})
	if err != nil {
		return nil, err
	}
	var current *planning.Task
	for i := range tasks {
		if tasks[i].ID == id {
			current = &tasks[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %s", planning.ErrTaskNotFound, id)
	}

	updated := patch.Apply(*current)
	now := s.now().UTC()
	updated.UpdatedAt = now.Truncate(time.Second)
	_, err = s.db.ExecContext(ctx, `
	UPDATE tasks SET title = ?, description = ?, status = ?, due_date = ?, updated_at = ? WHERE id = ?`,
		updated.Title, updated.Description, string(updated.Status), updated.DueDate, now.Unix(), id)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &updated, nil
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, id string, patch planning.ProjectPatch) (*planning.Project, error) {
	if err := validateProjectPatch(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.FindProjects(ctx)
	if err != nil {
		return nil, err
	}
	var current *planning.Project
	for i := range projects {
		p := &projects[i]
		if p.ID == id {
			current = p
		} else if patch.Title != nil && titleKey(p.Title) == titleKey(*patch.Title) {
			return nil, &planning.ConflictError{Title: p.Title, ExistingID: p.ID}
		}
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %s", planning.ErrProjectNotFound, id)
	}

	updated := patch.Apply(*current)
	now := s.now().UTC()
	updated.UpdatedAt = now.Truncate(time.Second)
	_, err = s.db.ExecContext(ctx, `
	UPDATE projects SET title = ?, title_key = ?, description = ?, priority = ?, due_date = ?, updated_at = ? WHERE id = ?`,
		updated.Title, titleKey(updated.Title), updated.Description, string(updated.Priority), updated.DueDate, now.Unix(), id)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &updated, nil
}

func (s *SQLiteStore) Count(ctx context.Context, kind planning.Kind, filter planning.TaskFilter) (int, error) {
	if kind == planning.KindProject {
		if filter.Text == "" {
			var n int
			if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM projects`).Scan(&n); err != nil {
				return 0, fmt.Errorf("count projects: %w", err)
			}
			return n, nil
		}
		projects, err := s.FindProjects(ctx)
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
	tasks, err := s.FindTasks(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}
