package storage

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/dictado/pkg/domain/language"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// titleKey is the form under which project titles must be unique.
func titleKey(title string) string {
	return language.Normalize(title)
}

func validDate(value string) bool {
	if value == "" {
		return true
	}
	_, ok := language.ParseISODate(value, time.UTC)
	return ok
}

func validateNewProject(in *planning.NewProject) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return &planning.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if in.Priority == "" {
		in.Priority = planning.DefaultTaskPriority()
	}
	if !in.Priority.IsValid() {
		return &planning.ValidationError{Field: "priority", Reason: "unknown priority " + string(in.Priority)}
	}
	if !validDate(in.DueDate) {
		return &planning.ValidationError{Field: "dueDate", Reason: "expected YYYY-MM-DD"}
	}
	return nil
}

func validateNewTask(in *planning.NewTask) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return &planning.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if in.ProjectID == "" {
		return &planning.ValidationError{Field: "projectId", Reason: "must not be empty"}
	}
	if in.Status == "" {
		in.Status = planning.StatusPending
	}
	if !in.Status.IsValid() {
		return &planning.ValidationError{Field: "status", Reason: "unknown status " + string(in.Status)}
	}
	if !validDate(in.DueDate) {
		return &planning.ValidationError{Field: "dueDate", Reason: "expected YYYY-MM-DD"}
	}
	return nil
}

func validateTaskPatch(p planning.TaskPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &planning.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.Status != nil && !p.Status.IsValid() {
		return &planning.ValidationError{Field: "status", Reason: "unknown status " + string(*p.Status)}
	}
	if p.DueDate != nil && !validDate(*p.DueDate) {
		return &planning.ValidationError{Field: "dueDate", Reason: "expected YYYY-MM-DD"}
	}
	return nil
}

func validateProjectPatch(p planning.ProjectPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &planning.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return &planning.ValidationError{Field: "priority", Reason: "unknown priority " + string(*p.Priority)}
	}
	if p.DueDate != nil && !validDate(*p.DueDate) {
		return &planning.ValidationError{Field: "dueDate", Reason: "expected YYYY-MM-DD"}
	}
	return nil
}
