package planning

import (
	"encoding/json"
	"testing"
)

func TestTaskStatus_IsValid(t *testing.T) {
	tests := []struct {
		status TaskStatus
		valid  bool
	}{
		{StatusPending, true},
		{StatusInProgress, true},
		{StatusBlocked, true},
		{StatusDone, true},
		{TaskStatus("verified"), false},
		{TaskStatus("invalid"), false},
		{TaskStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestLookupTaskStatus(t *testing.T) {
	tests := []struct {
		word string
		want TaskStatus
		ok   bool
	}{
		{"pendiente", StatusPending, true},
		{"Pendientes", StatusPending, true},
		{"en curso", StatusInProgress, true},
		{"En Progreso", StatusInProgress, true},
		{"in_progress", StatusInProgress, true},
		{"bloqueada", StatusBlocked, true},
		{"Completada", StatusDone, true},
		{"terminado", StatusDone, true},
		{"done", StatusDone, true},
		{"quizás", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got, ok := LookupTaskStatus(tt.word)
			if got != tt.want || ok != tt.ok {
				t.Errorf("LookupTaskStatus(%q) = (%q, %v), want (%q, %v)", tt.word, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTaskStatus_DisplayName(t *testing.T) {
	if got := StatusDone.DisplayName(false); got != "completada" {
		t.Errorf("singular = %q", got)
	}
	if got := StatusDone.DisplayName(true); got != "completadas" {
		t.Errorf("plural = %q", got)
	}
	if got := StatusInProgress.DisplayName(true); got != "en progreso" {
		t.Errorf("in progress plural = %q", got)
	}
}

func TestParseTaskStatus(t *testing.T) {
	if _, err := ParseTaskStatus("done"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseTaskStatus("completada"); err == nil {
		t.Error("expected error for non-canonical status")
	}
}

func TestTaskStatus_UnmarshalJSON(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"id":"t1","status":""}`), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.Status != StatusPending {
		t.Errorf("empty status should default to pending, got %q", task.Status)
	}

	if err := json.Unmarshal([]byte(`{"id":"t1","status":"nope"}`), &task); err == nil {
		t.Error("expected error for invalid status")
	}
}
