package command

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/felixgeelhaar/dictado/pkg/domain/language"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// Slot names one structured field extracted from free text.
type Slot string

const (
	SlotTitle            Slot = "title"
	SlotDescription      Slot = "description"
	SlotStatus           Slot = "status"
	SlotPriority         Slot = "priority"
	SlotDueDate          Slot = "dueDate"
	SlotReferenceText    Slot = "referenceText"
	SlotProjectReference Slot = "projectReference"
	SlotProjectID        Slot = "projectId"
)

var declaredSlots = map[Intent][]Slot{
	IntentCreateTask:    {SlotTitle, SlotDescription, SlotStatus, SlotDueDate, SlotProjectReference, SlotProjectID},
	IntentCreateProject: {SlotTitle, SlotDescription, SlotPriority, SlotDueDate},
	IntentSearchTask:    {SlotReferenceText, SlotStatus, SlotProjectReference, SlotProjectID},
	IntentSearchProject: {SlotReferenceText, SlotPriority},
	IntentUpdateTask:    {SlotReferenceText, SlotTitle, SlotDescription, SlotStatus, SlotDueDate},
	IntentUpdateProject: {SlotReferenceText, SlotTitle, SlotDescription, SlotPriority, SlotDueDate},
	IntentCountTasks:    {SlotStatus, SlotProjectReference, SlotProjectID},
	IntentCountProjects: {SlotPriority},
	IntentAssistance:    nil,
}

// DeclaredSlots returns the slots an intent may carry, in a stable order.
func DeclaredSlots(intent Intent) []Slot {
	slots := declaredSlots[intent]
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

// Declares reports whether intent carries slot.
func Declares(intent Intent, slot Slot) bool {
	for _, s := range declaredSlots[intent] {
		if s == slot {
			return true
		}
	}
	return false
}

// SlotSet holds the extracted fields for one request. A nil field is absent;
// absent fields are never filled with guesses except by ApplyDefaults.
type SlotSet struct {
	Title            *string                `json:"title,omitempty"`
	Description      *string                `json:"description,omitempty"`
	Status           *planning.TaskStatus   `json:"status,omitempty"`
	Priority         *planning.TaskPriority `json:"priority,omitempty"`
	DueDate          *string                `json:"dueDate,omitempty"`
	ReferenceText    *string                `json:"referenceText,omitempty"`
	ProjectReference *string                `json:"projectReference,omitempty"`
	ProjectID        *string                `json:"projectId,omitempty"`
}

// Has reports whether slot holds a value.
func (s SlotSet) Has(slot Slot) bool {
	switch slot {
	case SlotTitle:
		return s.Title != nil
	case SlotDescription:
		return s.Description != nil
	case SlotStatus:
		return s.Status != nil
	case SlotPriority:
		return s.Priority != nil
	case SlotDueDate:
		return s.DueDate != nil
	case SlotReferenceText:
		return s.ReferenceText != nil
	case SlotProjectReference:
		return s.ProjectReference != nil
	case SlotProjectID:
		return s.ProjectID != nil
	}
	return false
}

// Value returns the slot's value as text, or "" when absent.
func (s SlotSet) Value(slot Slot) string {
	switch slot {
	case SlotTitle:
		return deref(s.Title)
	case SlotDescription:
		return deref(s.Description)
	case SlotStatus:
		if s.Status != nil {
			return string(*s.Status)
		}
	case SlotPriority:
		if s.Priority != nil {
			return string(*s.Priority)
		}
	case SlotDueDate:
		return deref(s.DueDate)
	case SlotReferenceText:
		return deref(s.ReferenceText)
	case SlotProjectReference:
		return deref(s.ProjectReference)
	case SlotProjectID:
		return deref(s.ProjectID)
	}
	return ""
}

// Set validates and stores value under slot. Status and priority accept
// canonical values or Spanish/English words; dueDate accepts an ISO date or
// any phrase the date resolver understands relative to ref. Text slots are
// trimmed of surrounding quotes and punctuation. Set reports false and
// leaves the slot untouched when the value does not validate.
func (s *SlotSet) Set(slot Slot, value string, ref time.Time) bool {
	switch slot {
	case SlotStatus:
		status, ok := planning.LookupTaskStatus(value)
		if !ok {
			return false
		}
		s.Status = &status
		return true
	case SlotPriority:
		priority, ok := planning.LookupTaskPriority(value)
		if !ok {
			return false
		}
		s.Priority = &priority
		return true
	case SlotDueDate:
		date, ok := normalizeDate(value, ref)
		if !ok {
			return false
		}
		s.DueDate = &date
		return true
	}

	text := cleanText(value)
	if text == "" {
		return false
	}
	switch slot {
	case SlotTitle:
		s.Title = &text
	case SlotDescription:
		s.Description = &text
	case SlotReferenceText:
		s.ReferenceText = &text
	case SlotProjectReference:
		s.ProjectReference = &text
	case SlotProjectID:
		s.ProjectID = &text
	default:
		return false
	}
	return true
}

// Merge copies every slot present in other and absent in s.
func (s *SlotSet) Merge(other SlotSet) {
	if s.Title == nil {
		s.Title = other.Title
	}
	if s.Description == nil {
		s.Description = other.Description
	}
	if s.Status == nil {
		s.Status = other.Status
	}
	if s.Priority == nil {
		s.Priority = other.Priority
	}
	if s.DueDate == nil {
		s.DueDate = other.DueDate
	}
	if s.ReferenceText == nil {
		s.ReferenceText = other.ReferenceText
	}
	if s.ProjectReference == nil {
		s.ProjectReference = other.ProjectReference
	}
	if s.ProjectID == nil {
		s.ProjectID = other.ProjectID
	}
}

// Restrict returns a copy holding only the slots intent declares.
func (s SlotSet) Restrict(intent Intent) SlotSet {
	var out SlotSet
	for _, slot := range declaredSlots[intent] {
		switch slot {
		case SlotTitle:
			out.Title = s.Title
		case SlotDescription:
			out.Description = s.Description
		case SlotStatus:
			out.Status = s.Status
		case SlotPriority:
			out.Priority = s.Priority
		case SlotDueDate:
			out.DueDate = s.DueDate
		case SlotReferenceText:
			out.ReferenceText = s.ReferenceText
		case SlotProjectReference:
			out.ProjectReference = s.ProjectReference
		case SlotProjectID:
			out.ProjectID = s.ProjectID
		}
	}
	return out
}

// String renders the present slots as JSON, for logs.
func (s SlotSet) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func normalizeDate(value string, ref time.Time) (string, bool) {
	value = strings.TrimSpace(value)
	if t, ok := language.ParseISODate(value, ref.Location()); ok {
		return t.Format(language.ISODate), true
	}
	return language.ResolveDate(value, ref)
}

// cleanText trims whitespace, quotes and edge punctuation from a captured value.
func cleanText(value string) string {
	value = strings.Join(strings.Fields(value), " ")
	return strings.Trim(value, " \t\"'«»“”‘’`,;:.¿?¡!")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptr[T any](v T) *T {
	return &v
}
