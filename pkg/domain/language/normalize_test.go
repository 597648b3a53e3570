package language

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Crear Tarea Comprar Pan", "crear tarea comprar pan"},
		{"¿Cuántas tareas tengo?", "cuantas tareas tengo"},
		{"  ¡Actualizá   la tarea   Fénix!  ", "actualiza la tarea fenix"},
		{"mañana", "mañana"},
		{"MAÑANA", "mañana"},
		{"pingüino", "pinguino"},
		{"", ""},
		{"¿?", ""},
		{"termina el informe.", "termina el informe"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"¿Cuántas tareas tengo?",
		"¿ ¡hola",
		"Crear proyecto Apolo con prioridad ALTA!!",
		"  espacios    dobles \t y tabs ",
		"Ñandú ÁÉÍÓÚ ü",
		"fin de año...?",
		"a?b?",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestAlign_SlicePreservesRawText(t *testing.T) {
	a := Align("Crear tarea Canción de Año")
	if a.Folded != "crear tarea cancion de año" {
		t.Fatalf("unexpected folded text %q", a.Folded)
	}

	start := len("crear tarea ")
	if got := a.Slice(start, len(a.Folded)); got != "Canción de Año" {
		t.Errorf("Slice = %q, want %q", got, "Canción de Año")
	}
	if got := a.Slice(5, 2); got != "" {
		t.Errorf("expected empty slice for inverted bounds, got %q", got)
	}
}

func TestContentTokens(t *testing.T) {
	got := ContentTokens("La campaña de Marketing, para el lanzamiento")
	want := []string{"campaña", "marketing", "lanzamiento"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ContentTokens = %v, want %v", got, want)
	}
}
