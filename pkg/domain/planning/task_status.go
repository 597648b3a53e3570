package planning

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/dictado/pkg/domain/language"
)

// statusWords maps folded Spanish and English words to a status.
var statusWords = map[string]TaskStatus{
	"pending":     StatusPending,
	"pendiente":   StatusPending,
	"pendientes":  StatusPending,
	"por hacer":   StatusPending,
	"in_progress": StatusInProgress,
	"in progress": StatusInProgress,
	"en progreso": StatusInProgress,
	"en curso":    StatusInProgress,
	"en proceso":  StatusInProgress,
	"iniciada":    StatusInProgress,
	"iniciadas":   StatusInProgress,
	"empezada":    StatusInProgress,
	"empezadas":   StatusInProgress,
	"blocked":     StatusBlocked,
	"bloqueada":   StatusBlocked,
	"bloqueadas":  StatusBlocked,
	"bloqueado":   StatusBlocked,
	"bloqueados":  StatusBlocked,
	"detenida":    StatusBlocked,
	"done":        StatusDone,
	"completada":  StatusDone,
	"completadas": StatusDone,
	"completado":  StatusDone,
	"completados": StatusDone,
	"terminada":   StatusDone,
	"terminadas":  StatusDone,
	"terminado":   StatusDone,
	"terminados":  StatusDone,
	"finalizada":  StatusDone,
	"finalizadas": StatusDone,
	"finalizado":  StatusDone,
	"hecha":       StatusDone,
	"hechas":      StatusDone,
	"hecho":       StatusDone,
	"lista":       StatusDone,
}

// AllTaskStatuses returns all valid task statuses.
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		StatusPending,
		StatusInProgress,
		StatusBlocked,
		StatusDone,
	}
}

// IsValid returns true if the status is a valid task status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusBlocked, StatusDone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsComplete returns true if the task is done.
func (s TaskStatus) IsComplete() bool {
	return s == StatusDone
}

// DisplayName returns the Spanish label used in confirmations, agreeing in
// number with the count it describes.
func (s TaskStatus) DisplayName(plural bool) string {
	var label string
	switch s {
	case StatusPending:
		label = "pendiente"
	case StatusInProgress:
		return "en progreso"
	case StatusBlocked:
		label = "bloqueada"
	case StatusDone:
		label = "completada"
	default:
		return string(s)
	}
	if plural {
		return label + "s"
	}
	return label
}

// ParseTaskStatus parses a canonical status string.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid task status: %s", s)
	}
	return status, nil
}

// LookupTaskStatus maps a canonical value or a Spanish/English status word
// ("completada", "en curso", "done") to a status.
func LookupTaskStatus(word string) (TaskStatus, bool) {
	status, ok := statusWords[language.Normalize(word)]
	return status, ok
}

// MarshalJSON implements json.Marshaler interface.
func (s TaskStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	// Accept empty string as pending for backward compatibility
	if str == "" {
		*s = StatusPending
		return nil
	}

	status := TaskStatus(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid task status: %s", str)
	}

	*s = status
	return nil
}
