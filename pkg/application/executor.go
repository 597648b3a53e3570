package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/language"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

const (
	DefaultSearchLimit  = 10
	DefaultStoreTimeout = 5 * time.Second
)

// CommandExecutor performs the store operation an intent asks for. Store
// calls are bounded by a timeout and never retried.
type CommandExecutor struct {
	store        planning.Store
	logger       *slog.Logger
	searchLimit  int
	storeTimeout time.Duration
}

// NewCommandExecutor creates an executor. Zero limits take their defaults.
func NewCommandExecutor(store planning.Store, searchLimit int, storeTimeout time.Duration, logger *slog.Logger) *CommandExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	return &CommandExecutor{
		store:        store,
		logger:       logger,
		searchLimit:  searchLimit,
		storeTimeout: storeTimeout,
	}
}

// Execute runs intent with the extracted slots and resolved records. ref is
// the reference instant used for date validation. The returned result has
// no message; failures are returned as *command.Failure.
func (x *CommandExecutor) Execute(ctx context.Context, intent command.Intent, slots command.SlotSet, res Resolution, snapshot planning.Snapshot, ref time.Time) (command.CommandResult, error) {
	result := command.CommandResult{Success: true, Intent: intent, Slots: slots}

	var err error
	switch intent {
	case command.IntentCreateProject:
		err = x.createProject(ctx, &result, snapshot, ref)
	case command.IntentCreateTask:
		err = x.createTask(ctx, &result, res, ref)
	case command.IntentSearchTask:
		x.searchTasks(&result, res, snapshot)
	case command.IntentSearchProject:
		x.searchProjects(&result, snapshot)
	case command.IntentUpdateTask:
		err = x.updateTask(ctx, &result, res, ref)
	case command.IntentUpdateProject:
		err = x.updateProject(ctx, &result, res, snapshot, ref)
	case command.IntentCountTasks:
		x.countTasks(&result, res, snapshot)
	case command.IntentCountProjects:
		x.countProjects(&result, snapshot)
	case command.IntentAssistance:
		result.Action = command.ActionAssistance
	default:
		err = fmt.Errorf("unsupported intent %q", intent)
	}
	if err != nil {
		return command.CommandResult{}, err
	}
	return result, nil
}

func (x *CommandExecutor) createProject(ctx context.Context, r *command.CommandResult, snapshot planning.Snapshot, ref time.Time) error {
	title := r.Slots.Value(command.SlotTitle)
	if title == "" {
		return &command.Failure{Kind: command.ErrorExtractionIncomplete, Entity: planning.KindProject, Slot: command.SlotTitle}
	}
	if existing, ok := findProjectByTitle(snapshot.Projects, title, ""); ok {
		return &command.Failure{
			Kind:   command.ErrorValidationConflict,
			Entity: planning.KindProject,
			Slot:   command.SlotTitle,
			Value:  existing.Title,
		}
	}
	if err := checkDueDate(r.Slots, planning.KindProject, ref); err != nil {
		return err
	}

	description := r.Slots.Value(command.SlotDescription)
	if description == "" {
		description = command.SynthesizeDescription(r.Intent, title, "")
		r.Slots.Description = &description
	}
	priority := planning.DefaultTaskPriority()
	if r.Slots.Priority != nil {
		priority = *r.Slots.Priority
	}

	project, err := withTimeout(ctx, x.storeTimeout, func(ctx context.Context) (*planning.Project, error) {
		return x.store.CreateProject(ctx, planning.NewProject{
			Title:       title,
			Description: description,
			Priority:    priority,
			DueDate:     r.Slots.Value(command.SlotDueDate),
		})
	})
	if err != nil {
		return x.storeFailure("create project", planning.KindProject, title, err)
	}

	r.Action = command.ActionProjectCreated
	r.Project = project
	return nil
}

func (x *CommandExecutor) createTask(ctx context.Context, r *command.CommandResult, res Resolution, ref time.Time) error {
	title := r.Slots.Value(command.SlotTitle)
	if title == "" {
		return &command.Failure{Kind: command.ErrorExtractionIncomplete, Entity: planning.KindTask, Slot: command.SlotTitle}
	}
	if res.Project == nil {
		return &command.Failure{Kind: command.ErrorEntityNotFound, Entity: planning.KindProject}
	}
	if err := checkDueDate(r.Slots, planning.KindTask, ref); err != nil {
		return err
	}

	description := r.Slots.Value(command.SlotDescription)
	if description == "" {
		description = command.SynthesizeDescription(r.Intent, title, res.Project.Title)
		r.Slots.Description = &description
	}
	status := planning.StatusPending
	if r.Slots.Status != nil {
		status = *r.Slots.Status
	}
	r.Slots.ProjectID = &res.Project.ID

	task, err := withTimeout(ctx, x.storeTimeout, func(ctx context.Context) (*planning.Task, error) {
		return x.store.CreateTask(ctx, planning.NewTask{
			Title:       title,
			Description: description,
			Status:      status,
			DueDate:     r.Slots.Value(command.SlotDueDate),
			ProjectID:   res.Project.ID,
		})
	})
	if err != nil {
		return x.storeFailure("create task", planning.KindTask, title, err)
	}

	r.Action = command.ActionTaskCreated
	r.Task = task
	r.Reference = res.Project
	return nil
}

func (x *CommandExecutor) searchTasks(r *command.CommandResult, res Resolution, snapshot planning.Snapshot) {
	filter := planning.TaskFilter{Text: r.Slots.Value(command.SlotReferenceText)}
	if r.Slots.Status != nil {
		filter.Status = *r.Slots.Status
	}
	if res.Project != nil {
		filter.ProjectID = res.Project.ID
		r.Reference = res.Project
	}

	search := &command.SearchResults{Query: filter.Text}
	for _, t := range snapshot.Tasks {
		if !filter.Matches(t) {
			continue
		}
		search.Total++
		if len(search.Tasks) < x.searchLimit {
			search.Tasks = append(search.Tasks, t)
		}
	}
	search.Truncated = search.Total > len(search.Tasks)

	r.Action = command.ActionTaskSearched
	r.Search = search
}

func (x *CommandExecutor) searchProjects(r *command.CommandResult, snapshot planning.Snapshot) {
	filter := planning.ProjectFilter{Text: r.Slots.Value(command.SlotReferenceText)}
	if r.Slots.Priority != nil {
		filter.Priority = *r.Slots.Priority
	}

	search := &command.SearchResults{Query: filter.Text}
	for _, p := range snapshot.Projects {
		if !filter.Matches(p) {
			continue
		}
		search.Total++
		if len(search.Projects) < x.searchLimit {
			search.Projects = append(search.Projects, p)
		}
	}
	search.Truncated = search.Total > len(search.Projects)

	r.Action = command.ActionProjectSearched
	r.Search = search
}

func (x *CommandExecutor) updateTask(ctx context.Context, r *command.CommandResult, res Resolution, ref time.Time) error {
	if res.Target == nil {
		return &command.Failure{Kind: command.ErrorEntityNotFound, Entity: planning.KindTask, Reference: r.Slots.Value(command.SlotReferenceText)}
	}
	r.Reference = res.Target

	var patch planning.TaskPatch
	var changed []command.Slot
	if r.Slots.Title != nil {
		patch.Title = r.Slots.Title
		changed = append(changed, command.SlotTitle)
	}
	if r.Slots.Description != nil {
		patch.Description = r.Slots.Description
		changed = append(changed, command.SlotDescription)
	}
	if r.Slots.Status != nil {
		patch.Status = r.Slots.Status
		changed = append(changed, command.SlotStatus)
	}
	if r.Slots.DueDate != nil {
		patch.DueDate = r.Slots.DueDate
		changed = append(changed, command.SlotDueDate)
	}
	if patch.IsEmpty() {
		return &command.Failure{Kind: command.ErrorExtractionIncomplete, Entity: planning.KindTask, Reference: res.Target.Title}
	}
	if err := checkDueDate(r.Slots, planning.KindTask, ref); err != nil {
		return err
	}

	task, err := withTimeout(ctx, x.storeTimeout, func(ctx context.Context) (*planning.Task, error) {
		return x.store.UpdateTask(ctx, res.Target.ID, patch)
	})
	if err != nil {
		return x.storeFailure("update task", planning.KindTask, res.Target.Title, err)
	}

	r.Action = command.ActionTaskUpdated
	r.Task = task
	r.Changed = changed
	return nil
}

func (x *CommandExecutor) updateProject(ctx context.Context, r *command.CommandResult, res Resolution, snapshot planning.Snapshot, ref time.Time) error {
	if res.Target == nil {
		return &command.Failure{Kind: command.ErrorEntityNotFound, Entity: planning.KindProject, Reference: r.Slots.Value(command.SlotReferenceText)}
	}
	r.Reference = res.Target

	var patch planning.ProjectPatch
	var changed []command.Slot
	if r.Slots.Title != nil {
		if existing, ok := findProjectByTitle(snapshot.Projects, *r.Slots.Title, res.Target.ID); ok {
			return &command.Failure{
				Kind:   command.ErrorValidationConflict,
				Entity: planning.KindProject,
				Slot:   command.SlotTitle,
				Value:  existing.Title,
			}
		}
		patch.Title = r.Slots.Title
		changed = append(changed, command.SlotTitle)
	}
	if r.Slots.Description != nil {
		patch.Description = r.Slots.Description
		changed = append(changed, command.SlotDescription)
	}
	if r.Slots.Priority != nil {
		patch.Priority = r.Slots.Priority
		changed = append(changed, command.SlotPriority)
	}
	if r.Slots.DueDate != nil {
		patch.DueDate = r.Slots.DueDate
		changed = append(changed, command.SlotDueDate)
	}
	if patch.IsEmpty() {
		return &command.Failure{Kind: command.ErrorExtractionIncomplete, Entity: planning.KindProject, Reference: res.Target.Title}
	}
	if err := checkDueDate(r.Slots, planning.KindProject, ref); err != nil {
		return err
	}

	project, err := withTimeout(ctx, x.storeTimeout, func(ctx context.Context) (*planning.Project, error) {
		return x.store.UpdateProject(ctx, res.Target.ID, patch)
	})
	if err != nil {
		return x.storeFailure("update project", planning.KindProject, res.Target.Title, err)
	}

	r.Action = command.ActionProjectUpdated
	r.Project = project
	r.Changed = changed
	return nil
}

func (x *CommandExecutor) countTasks(r *command.CommandResult, res Resolution, snapshot planning.Snapshot) {
	var filter planning.TaskFilter
	summary := &command.CountSummary{Kind: planning.KindTask}
	if r.Slots.Status != nil {
		filter.Status = *r.Slots.Status
		summary.Filter = string(filter.Status)
	}
	if res.Project != nil {
		filter.ProjectID = res.Project.ID
		summary.Scope = res.Project.Title
		r.Reference = res.Project
	}

	buckets := make(map[planning.TaskStatus]int)
	for _, t := range snapshot.Tasks {
		if filter.Matches(t) {
			summary.Total++
			buckets[t.Status]++
		}
	}
	for _, s := range planning.AllTaskStatuses() {
		summary.ByCategory = append(summary.ByCategory, command.CategoryCount{Category: string(s), Count: buckets[s]})
	}
	x.checkCount(*summary)

	r.Action = command.ActionTaskCounted
	r.Count = summary
}

func (x *CommandExecutor) countProjects(r *command.CommandResult, snapshot planning.Snapshot) {
	var filter planning.ProjectFilter
	summary := &command.CountSummary{Kind: planning.KindProject}
	if r.Slots.Priority != nil {
		filter.Priority = *r.Slots.Priority
		summary.Filter = string(filter.Priority)
	}

	buckets := make(map[planning.TaskPriority]int)
	for _, p := range snapshot.Projects {
		if filter.Matches(p) {
			summary.Total++
			buckets[p.Priority]++
		}
	}
	for _, p := range planning.AllTaskPriorities() {
		summary.ByCategory = append(summary.ByCategory, command.CategoryCount{Category: string(p), Count: buckets[p]})
	}
	x.checkCount(*summary)

	r.Action = command.ActionProjectCounted
	r.Count = summary
}

// checkCount logs records whose category is outside the known set, which
// leave the breakdown short of the total.
func (x *CommandExecutor) checkCount(c command.CountSummary) {
	if c.Consistent() {
		return
	}
	sum := 0
	for _, b := range c.ByCategory {
		sum += b.Count
	}
	x.logger.Warn("count breakdown does not match total",
		"kind", c.Kind, "total", c.Total, "categorized", sum)
}

// storeFailure converts a store error into a pipeline failure.
func (x *CommandExecutor) storeFailure(op string, kind planning.Kind, reference string, err error) error {
	var conflict *planning.ConflictError
	var invalid *planning.ValidationError
	switch {
	case errors.As(err, &conflict):
		return &command.Failure{Kind: command.ErrorValidationConflict, Entity: kind, Slot: command.SlotTitle, Value: conflict.Title, Err: err}
	case errors.Is(err, planning.ErrDuplicateProject):
		return &command.Failure{Kind: command.ErrorValidationConflict, Entity: kind, Slot: command.SlotTitle, Value: reference, Err: err}
	case errors.As(err, &invalid):
		return &command.Failure{Kind: command.ErrorValidationConflict, Entity: kind, Slot: command.Slot(invalid.Field), Err: err}
	case errors.Is(err, planning.ErrInvalidInput):
		return &command.Failure{Kind: command.ErrorValidationConflict, Entity: kind, Err: err}
	case errors.Is(err, planning.ErrTaskNotFound), errors.Is(err, planning.ErrProjectNotFound):
		return &command.Failure{Kind: command.ErrorEntityNotFound, Entity: kind, Reference: reference, Err: err}
	}
	x.logger.Error("store call failed", "op", op, "error", err)
	return &command.Failure{Kind: command.ErrorExternalServiceFailure, Entity: kind, Err: fmt.Errorf("%s: %w", op, err)}
}

// checkDueDate rejects a due date earlier than the reference day.
func checkDueDate(slots command.SlotSet, kind planning.Kind, ref time.Time) error {
	if slots.DueDate == nil {
		return nil
	}
	if *slots.DueDate < ref.Format(language.ISODate) {
		return &command.Failure{
			Kind:   command.ErrorValidationConflict,
			Entity: kind,
			Slot:   command.SlotDueDate,
			Value:  *slots.DueDate,
		}
	}
	return nil
}

// findProjectByTitle finds a project whose title equals title once folded,
// ignoring the project with id skip.
func findProjectByTitle(projects []planning.Project, title, skip string) (planning.Project, bool) {
	want := language.Normalize(title)
	for _, p := range projects {
		if p.ID != skip && language.Normalize(p.Title) == want {
			return p, true
		}
	}
	return planning.Project{}, false
}

func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	t := timeout.New[T](timeout.Config{DefaultTimeout: d})
	return t.Execute(ctx, d, fn)
}
