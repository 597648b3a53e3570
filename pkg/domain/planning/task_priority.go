package planning

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/dictado/pkg/domain/language"
)

// priorityOrder defines the ordering of priorities (higher order = higher priority)
var priorityOrder = map[TaskPriority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
}

var priorityWords = map[string]TaskPriority{
	"low":        PriorityLow,
	"baja":       PriorityLow,
	"bajo":       PriorityLow,
	"minima":     PriorityLow,
	"medium":     PriorityMedium,
	"media":      PriorityMedium,
	"medio":      PriorityMedium,
	"normal":     PriorityMedium,
	"high":       PriorityHigh,
	"alta":       PriorityHigh,
	"alto":       PriorityHigh,
	"urgente":    PriorityHigh,
	"maxima":     PriorityHigh,
	"critica":    PriorityHigh,
	"importante": PriorityHigh,
}

// AllTaskPriorities returns all valid priorities, lowest first.
func AllTaskPriorities() []TaskPriority {
	return []TaskPriority{
		PriorityLow,
		PriorityMedium,
		PriorityHigh,
	}
}

// IsValid returns true if the priority is a valid task priority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the priority.
func (p TaskPriority) String() string {
	return string(p)
}

// Order returns the numeric order of the priority (higher = more important).
func (p TaskPriority) Order() int {
	if order, ok := priorityOrder[p]; ok {
		return order
	}
	return 0
}

// Compare compares this priority to another.
// Returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p TaskPriority) Compare(other TaskPriority) int {
	thisOrder := p.Order()
	otherOrder := other.Order()

	switch {
	case thisOrder < otherOrder:
		return -1
	case thisOrder > otherOrder:
		return 1
	default:
		return 0
	}
}

// DisplayName returns the Spanish label ("alta", "media", "baja").
func (p TaskPriority) DisplayName() string {
	switch p {
	case PriorityLow:
		return "baja"
	case PriorityMedium:
		return "media"
	case PriorityHigh:
		return "alta"
	default:
		return string(p)
	}
}

// ParseTaskPriority parses a canonical priority string.
func ParseTaskPriority(s string) (TaskPriority, error) {
	priority := TaskPriority(s)
	if !priority.IsValid() {
		return "", fmt.Errorf("invalid task priority: %s", s)
	}
	return priority, nil
}

// LookupTaskPriority maps a canonical value or a Spanish/English priority
// word ("alta", "urgente", "low") to a priority.
func LookupTaskPriority(word string) (TaskPriority, bool) {
	priority, ok := priorityWords[language.Normalize(word)]
	return priority, ok
}

// DefaultTaskPriority returns the priority given to new projects.
func DefaultTaskPriority() TaskPriority {
	return PriorityMedium
}

// MarshalJSON implements json.Marshaler interface.
func (p TaskPriority) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	// Accept empty string as medium for backward compatibility
	if str == "" {
		*p = PriorityMedium
		return nil
	}

	priority := TaskPriority(str)
	if !priority.IsValid() {
		return fmt.Errorf("invalid task priority: %s", str)
	}

	*p = priority
	return nil
}
