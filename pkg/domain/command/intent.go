// Package command holds the interpretation domain of dictado: the closed set
// of intents, the slot model, the deterministic rule tables used to classify
// and extract, the entity resolver, and the result/formatting types.
package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// Intent is what the speaker wants done. Exactly one per request.
type Intent string

const (
	IntentCreateTask    Intent = "createTask"
	IntentCreateProject Intent = "createProject"
	IntentSearchTask    Intent = "searchTask"
	IntentSearchProject Intent = "searchProject"
	IntentUpdateTask    Intent = "updateTask"
	IntentUpdateProject Intent = "updateProject"
	IntentCountTasks    Intent = "countTasks"
	IntentCountProjects Intent = "countProjects"
	IntentAssistance    Intent = "assistance"
)

// AllIntents returns every member of the closed intent set.
func AllIntents() []Intent {
	return []Intent{
		IntentCreateTask,
		IntentCreateProject,
		IntentSearchTask,
		IntentSearchProject,
		IntentUpdateTask,
		IntentUpdateProject,
		IntentCountTasks,
		IntentCountProjects,
		IntentAssistance,
	}
}

// IsValid reports whether i belongs to the closed set.
func (i Intent) IsValid() bool {
	switch i {
	case IntentCreateTask, IntentCreateProject, IntentSearchTask, IntentSearchProject,
		IntentUpdateTask, IntentUpdateProject, IntentCountTasks, IntentCountProjects,
		IntentAssistance:
		return true
	default:
		return false
	}
}

func (i Intent) String() string {
	return string(i)
}

// Kind returns the record family the intent operates on. Assistance has none.
func (i Intent) Kind() planning.Kind {
	switch i {
	case IntentCreateTask, IntentSearchTask, IntentUpdateTask, IntentCountTasks:
		return planning.KindTask
	case IntentCreateProject, IntentSearchProject, IntentUpdateProject, IntentCountProjects:
		return planning.KindProject
	default:
		return ""
	}
}

// IsCreate reports whether the intent creates a record.
func (i Intent) IsCreate() bool {
	return i == IntentCreateTask || i == IntentCreateProject
}

// IsUpdate reports whether the intent modifies an existing record.
func (i Intent) IsUpdate() bool {
	return i == IntentUpdateTask || i == IntentUpdateProject
}

// ParseIntent matches s against the intent names, ignoring case and
// surrounding quotes or punctuation.
func ParseIntent(s string) (Intent, error) {
	clean := strings.Trim(strings.TrimSpace(s), "\"'`.")
	for _, i := range AllIntents() {
		if strings.EqualFold(clean, string(i)) {
			return i, nil
		}
	}
	return "", fmt.Errorf("unknown intent: %q", s)
}

// MarshalJSON implements json.Marshaler interface.
func (i Intent) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(i))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (i *Intent) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*i = ""
		return nil
	}
	parsed, err := ParseIntent(str)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
