package command_test

import (
	"math"
	"testing"

	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

func tasks(titles ...string) []planning.Task {
	out := make([]planning.Task, len(titles))
	for i, title := range titles {
		out[i] = planning.Task{ID: string(rune('a' + i)), Title: title}
	}
	return out
}

func TestResolveTask(t *testing.T) {
	snapshot := tasks("Preparar informe mensual", "Enviar informe trimestral al cliente", "Comprar pan")

	tests := []struct {
		name       string
		reference  string
		wantID     string
		strategy   command.MatchStrategy
		confidence float64
	}{
		{"exact ignoring case and accents", "comprar PÁN", "c", command.MatchExact, 1.0},
		{"reference contains title", "la de comprar pan integral", "c", command.MatchPartial, 0.8},
		{"title contains reference", "informe trimestral", "b", command.MatchPartial, 0.8},
		{"best keyword overlap", "informe para el cliente", "b", command.MatchKeyword, 0.6},
		{"keyword tie goes to first", "informe anual", "a", command.MatchKeyword, 0.45},
		{"empty reference falls back", "", "a", command.MatchFallback, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := command.ResolveTask(tt.reference, snapshot)
			if !ok {
				t.Fatalf("ResolveTask(%q) found nothing", tt.reference)
			}
			if got.ID != tt.wantID || got.MatchStrategy != tt.strategy {
				t.Errorf("ResolveTask(%q) = %s/%s, want %s/%s", tt.reference, got.ID, got.MatchStrategy, tt.wantID, tt.strategy)
			}
			if math.Abs(got.Confidence-tt.confidence) > 1e-9 {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.confidence)
			}
			if got.Kind != planning.KindTask {
				t.Errorf("kind = %s", got.Kind)
			}
		})
	}
}

func TestResolve_ExactOutranksEarlierPartial(t *testing.T) {
	projects := []planning.Project{
		{ID: "1", Title: "Casa de campo"},
		{ID: "2", Title: "Casa"},
	}
	got, ok := command.ResolveProject("casa", projects)
	if !ok || got.ID != "2" || got.MatchStrategy != command.MatchExact {
		t.Errorf("expected exact match on later element, got %+v", got)
	}

	reversed := []planning.Project{projects[1], projects[0]}
	got, ok = command.ResolveProject("casa", reversed)
	if !ok || got.ID != "2" || got.MatchStrategy != command.MatchExact {
		t.Errorf("expected exact match independent of order, got %+v", got)
	}
}

func TestResolve_UnmatchedReference(t *testing.T) {
	snapshot := tasks("Comprar pan")

	if _, ok := command.ResolveTask("Fénix", snapshot); ok {
		t.Error("unmatched reference should not resolve without fallback")
	}

	got, ok := command.ResolveTask("Fénix", snapshot, command.FallbackOnUnmatched())
	if !ok || got.MatchStrategy != command.MatchFallback || !got.IsGuess() {
		t.Errorf("expected fallback guess, got %+v", got)
	}
}

func TestResolve_EmptySnapshot(t *testing.T) {
	if _, ok := command.ResolveProject("", nil, command.FallbackOnUnmatched()); ok {
		t.Error("empty snapshot must not resolve")
	}
}

func TestProjectByID(t *testing.T) {
	projects := []planning.Project{{ID: "1", Title: "Casa"}}
	got, ok := command.ProjectByID("1", projects)
	if !ok || got.Title != "Casa" || got.MatchStrategy != command.MatchID {
		t.Errorf("ProjectByID = %+v, %v", got, ok)
	}
	if _, ok := command.ProjectByID("9", projects); ok {
		t.Error("unknown id should not resolve")
	}
}
