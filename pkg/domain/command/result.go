package command

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// ErrorKind classifies why a command did not succeed. Each kind maps to one
// family of user-facing messages.
type ErrorKind string

const (
	// ErrorClassificationAmbiguous marks a request answered with assistance
	// because nothing recognized it. It never fails a result.
	ErrorClassificationAmbiguous ErrorKind = "ClassificationAmbiguous"
	ErrorExtractionIncomplete    ErrorKind = "ExtractionIncomplete"
	ErrorEntityNotFound          ErrorKind = "EntityNotFound"
	ErrorValidationConflict      ErrorKind = "ValidationConflict"
	ErrorExternalServiceFailure  ErrorKind = "ExternalServiceFailure"
)

// Failure is the error produced by a pipeline stage that cannot continue.
type Failure struct {
	Kind ErrorKind `json:"kind"`
	// Entity is the record family involved, if any.
	Entity planning.Kind `json:"entity,omitempty"`
	// Slot is the missing or invalid slot, if any.
	Slot Slot `json:"slot,omitempty"`
	// Reference is the text the user used to name the record.
	Reference string `json:"reference,omitempty"`
	// Value is the offending value for validation conflicts.
	Value string `json:"value,omitempty"`
	Err   error  `json:"-"`
}

func (f *Failure) Error() string {
	msg := string(f.Kind)
	if f.Entity != "" {
		msg += " " + string(f.Entity)
	}
	if f.Slot != "" {
		msg += fmt.Sprintf(" (slot %s)", f.Slot)
	}
	if f.Reference != "" {
		msg += fmt.Sprintf(" %q", f.Reference)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a *Failure from err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Action names the effect a successful command had.
type Action string

const (
	ActionTaskCreated     Action = "task.created"
	ActionProjectCreated  Action = "project.created"
	ActionTaskSearched    Action = "task.searched"
	ActionProjectSearched Action = "project.searched"
	ActionTaskUpdated     Action = "task.updated"
	ActionProjectUpdated  Action = "project.updated"
	ActionTaskCounted     Action = "task.counted"
	ActionProjectCounted  Action = "project.counted"
	ActionAssistance      Action = "assistance"
)

// SearchResults is the payload of a search. Total counts every match; the
// slices hold at most the configured cap.
type SearchResults struct {
	Query     string             `json:"query,omitempty"`
	Tasks     []planning.Task    `json:"tasks,omitempty"`
	Projects  []planning.Project `json:"projects,omitempty"`
	Total     int                `json:"total"`
	Truncated bool               `json:"truncated"`
}

// Len returns the number of returned records.
func (s SearchResults) Len() int {
	return len(s.Tasks) + len(s.Projects)
}

// Titles returns the titles of the returned records in order.
func (s SearchResults) Titles() []string {
	titles := make([]string, 0, s.Len())
	for _, t := range s.Tasks {
		titles = append(titles, t.Title)
	}
	for _, p := range s.Projects {
		titles = append(titles, p.Title)
	}
	return titles
}

// CategoryCount is one bucket of a count breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CountSummary is the payload of a count: the total and its breakdown by
// status (tasks) or priority (projects), in canonical category order.
type CountSummary struct {
	Kind       planning.Kind   `json:"kind"`
	Total      int             `json:"total"`
	ByCategory []CategoryCount `json:"by_category"`
	// Filter is the status or priority the count was restricted to.
	Filter string `json:"filter,omitempty"`
	// Scope is the project title a task count was restricted to.
	Scope string `json:"scope,omitempty"`
}

// Consistent reports whether the breakdown sums to the total.
func (c CountSummary) Consistent() bool {
	sum := 0
	for _, b := range c.ByCategory {
		sum += b.Count
	}
	return sum == c.Total
}

// CommandResult is the outcome of one pipeline run. Exactly one payload
// field is set on success; Failure is set otherwise.
type CommandResult struct {
	Success   bool               `json:"success"`
	Intent    Intent             `json:"intent"`
	Action    Action             `json:"action,omitempty"`
	Message   string             `json:"message"`
	ErrorKind ErrorKind          `json:"errorKind,omitempty"`
	Reference *ResolvedReference `json:"reference,omitempty"`
	Slots     SlotSet            `json:"slots"`
	// Changed lists the slots applied by an update.
	Changed []Slot `json:"changed,omitempty"`

	Task    *planning.Task    `json:"task,omitempty"`
	Project *planning.Project `json:"project,omitempty"`
	Search  *SearchResults    `json:"searchResults,omitempty"`
	Count   *CountSummary     `json:"count,omitempty"`

	Failure *Failure `json:"failure,omitempty"`
}

// Failed builds the failed result for err. Errors that are not a *Failure
// become ExternalServiceFailure.
func Failed(intent Intent, err error) CommandResult {
	f, ok := AsFailure(err)
	if !ok {
		f = &Failure{Kind: ErrorExternalServiceFailure, Entity: intent.Kind(), Err: err}
	}
	return CommandResult{
		Success:   false,
		Intent:    intent,
		ErrorKind: f.Kind,
		Failure:   f,
	}
}
