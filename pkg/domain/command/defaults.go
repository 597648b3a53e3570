package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/dictado/pkg/domain/language"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

const (
	// MaxSynthesizedTitleWords caps a title built from leftover tokens.
	MaxSynthesizedTitleWords = 8
	// DefaultDueDays is the offset of the default due date.
	DefaultDueDays = 7
)

// commandKeywords are dropped wherever they appear when a title is built
// from leftover tokens.
var commandKeywords = map[string]bool{
	"crea": true, "crear": true, "creame": true, "agrega": true, "agregar": true, "agregame": true,
	"añade": true, "añadir": true, "añademe": true, "anade": true, "anadir": true,
	"registra": true, "registrar": true, "anota": true, "anotar": true, "apunta": true, "apuntar": true,
	"genera": true, "generar": true, "nueva": true, "nuevo": true, "tarea": true, "tareas": true,
	"proyecto": true, "recuerdame": true, "recordarme": true, "recuerda": true, "porfa": true,
	"favor": true, "puedes": true, "podrias": true, "quiero": true, "necesito": true,
	"llamada": true, "llamado": true, "titulada": true, "titulado": true,
}

// leadingFiller is dropped only before the first kept word.
var leadingFiller = map[string]bool{
	"por": true, "que": true, "una": true, "un": true, "la": true, "el": true, "de": true,
	"me": true, "tengo": true, "debo": true, "hay": true, "se": true, "llame": true,
}

// SynthesizeTitle builds a title from the words of raw that are not command
// keywords, stopping at the first clause marker or date expression and
// keeping at most MaxSynthesizedTitleWords words in their original spelling.
func SynthesizeTitle(raw string) (string, bool) {
	aligned := language.Align(raw)
	end := clauseEnd(aligned.Folded, true, createCuts)
	var kept []string
	for _, word := range strings.Fields(aligned.Slice(0, end)) {
		clean := cleanText(word)
		folded := language.Normalize(clean)
		if folded == "" || commandKeywords[folded] {
			continue
		}
		if len(kept) == 0 && leadingFiller[folded] {
			continue
		}
		kept = append(kept, clean)
		if len(kept) == MaxSynthesizedTitleWords {
			break
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, " "), true
}

// SynthesizeDescription builds the description of a record created without
// one. projectTitle is used for tasks and may be empty.
func SynthesizeDescription(intent Intent, title, projectTitle string) string {
	if intent == IntentCreateProject {
		return fmt.Sprintf("Proyecto %q", title)
	}
	if projectTitle == "" {
		return fmt.Sprintf("Tarea %q", title)
	}
	return fmt.Sprintf("Tarea %q del proyecto %q", title, projectTitle)
}

// DefaultDueDate returns ref plus DefaultDueDays as an ISO date.
func DefaultDueDate(ref time.Time) string {
	return ref.AddDate(0, 0, DefaultDueDays).Format(language.ISODate)
}

// ApplyDefaults fills the absent slots of a create intent: title from
// leftover tokens, dueDate ref+7 days, status pending, priority medium.
// Description depends on the resolved project and is filled by
// SynthesizeDescription at execution. Other intents are left untouched.
func ApplyDefaults(intent Intent, slots *SlotSet, raw string, ref time.Time) {
	if !intent.IsCreate() {
		return
	}
	if slots.Title == nil {
		if title, ok := SynthesizeTitle(raw); ok {
			slots.Title = &title
		}
	}
	if slots.DueDate == nil {
		slots.DueDate = ptr(DefaultDueDate(ref))
	}
	switch intent {
	case IntentCreateTask:
		if slots.Status == nil {
			slots.Status = ptr(planning.StatusPending)
		}
	case IntentCreateProject:
		if slots.Priority == nil {
			slots.Priority = ptr(planning.DefaultTaskPriority())
		}
	}
}
