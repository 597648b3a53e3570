package command

import (
	"regexp"
	"time"

	"github.com/felixgeelhaar/dictado/pkg/domain/language"
)

// capture is one candidate value and the folded span it was read from. Start
// and End are zero for values that do not come from a single span.
type capture struct {
	Value      string
	Start, End int
}

// extractFunc pulls one candidate value out of aligned text.
type extractFunc func(a language.Aligned, ref time.Time) (capture, bool)

// slotRule is one entry of the slot strategy table. Intents restricts the
// rule; nil means every intent that declares Slot.
//
// A Masks rule claims its span as the user's own wording: rules marked Masked
// that run later read the text with that span blanked, so a month inside a
// new title is not taken as a due date.
type slotRule struct {
	Name    string
	Slot    Slot
	Intents []Intent
	Extract extractFunc
	Masks   bool
	Masked  bool
}

func (r slotRule) appliesTo(intent Intent) bool {
	if !Declares(intent, r.Slot) {
		return false
	}
	if r.Intents == nil {
		return true
	}
	for _, i := range r.Intents {
		if i == intent {
			return true
		}
	}
	return false
}

const (
	priorityWordList = `alta|alto|media|medio|baja|bajo|urgente|normal|maxima|minima|critica|importante`
	verbLead         = `^[\s¿¡]*(?:por\s+favor\s+)?(?:puedes\s+|podrias\s+)?`
)

// Clause markers end a free-text capture. They are matched inside the
// captured segment, so each one requires leading whitespace.
var (
	projectClause  = regexp.MustCompile(`\s+(?:en|para|al|a|del?|dentro\s+del?)\s+(?:(?:el|mi|nuestro)\s+)?proyecto\b`)
	fieldClause    = regexp.MustCompile(`\s+(?:con\s+)?(?:(?:la|el|una|un)\s+)?(?:prioridad|descripcion|estado|fecha(?:\s+limite)?|vencimiento)\b`)
	dueClause      = regexp.MustCompile(`\s+(?:que\s+)?(?:vence|venza|vencen|vencer)\b`)
	punctClause    = regexp.MustCompile(`\s*(?:[,;!?]|\.(?:\s|$))`)
	statusClause   = regexp.MustCompile(`\s+(?:como|a|al|en)\s+(?:estado\s+)?(?:` + statusWords + `)\b|\s+en\s+(?:progreso|curso|proceso)\b`)
	priorityClause = regexp.MustCompile(`\s+(?:(?:a|en|con|de)\s+)?(?:prioridad\s+)?(?:` + priorityWordList + `)(?:\s+prioridad)?\s*$|\s+(?:urgente|importante)\b`)
	updateClause   = regexp.MustCompile(`\s+(?:como|y)\s+`)
	searchClause   = regexp.MustCompile(`\s+(?:que\s+(?:esten|estan|sean|tengan))\b|\s+(?:pendientes?|completad[ao]s?|terminad[ao]s?|bloquead[ao]s?|finalizad[ao]s?|en\s+(?:progreso|curso))\b`)

	trailingFiller = regexp.MustCompile(`(?:\s+(?:para|por|el|la|los|las|antes|de|del|hasta|a|al|en|con|fecha|limite|que|vence|venza|y|e|o))+\s*$`)

	referencePrefix = regexp.MustCompile(`^\s*(?:(?:el|la|los|las|mi|mis)\s+)?(?:proyecto|prioridad|estado)\b`)
	projectPrefix   = regexp.MustCompile(`^\s*(?:en|para|al|a|del?)\s+(?:(?:el|mi)\s+)?proyecto\b`)
)

var (
	createCuts        = []*regexp.Regexp{projectClause, fieldClause, dueClause, punctClause, statusClause}
	createProjectCuts = []*regexp.Regexp{fieldClause, dueClause, punctClause, priorityClause}
	updateTaskCuts    = []*regexp.Regexp{projectClause, fieldClause, dueClause, punctClause, statusClause, updateClause}
	updateProjectCuts = []*regexp.Regexp{fieldClause, dueClause, punctClause, priorityClause, updateClause}
	searchCuts        = []*regexp.Regexp{projectClause, fieldClause, punctClause, searchClause}
	scopeCuts         = []*regexp.Regexp{fieldClause, dueClause, punctClause, statusClause, searchClause}
)

var createIntents = []Intent{IntentCreateTask, IntentCreateProject}

// slotRules is the ordered strategy table. For each slot the first rule
// that yields a valid value wins; later rules for the same slot are skipped.
var slotRules = []slotRule{
	// title
	{Name: "quoted-title", Slot: SlotTitle, Intents: createIntents, Extract: quoted(`(?:^|\s)`)},
	{Name: "reminder-title", Slot: SlotTitle, Intents: []Intent{IntentCreateTask},
		Extract: captureText(verbLead+`(?:recuerdame|recordarme|recuerda(?:me)?)\s+(?:que\s+)?(?:(?:tengo|tenemos)\s+que\s+|debo\s+|hay\s+que\s+)?(.+)$`, true, projectPrefix, createCuts...)},
	{Name: "task-title", Slot: SlotTitle, Intents: []Intent{IntentCreateTask},
		Extract: captureText(`\btareas?\s*:?\s+(?:(?:llamada|titulada|que\s+se\s+llame|de\s+nombre|con\s+(?:el\s+)?(?:titulo|nombre))\s+)?:?\s*(.+)$`, true, projectPrefix, createCuts...)},
	{Name: "project-title", Slot: SlotTitle, Intents: []Intent{IntentCreateProject},
		Extract: captureText(`\bproyecto\s*:?\s+(?:(?:llamado|titulado|que\s+se\s+llame|de\s+nombre|con\s+(?:el\s+)?(?:titulo|nombre))\s+)?:?\s*(.+)$`, true, nil, createProjectCuts...)},
	{Name: "colon-title", Slot: SlotTitle, Intents: createIntents,
		Extract: captureText(`:\s*(.+)$`, true, nil, createCuts...)},
	{Name: "rename-title", Slot: SlotTitle, Intents: []Intent{IntentUpdateTask, IntentUpdateProject},
		Extract: captureText(`\b(?:renombra\w*|cambia\w*\s+(?:el\s+)?(?:titulo|nombre))\b.*?\s(?:a|por|como)\s+(.+)$`, false, nil, punctClause, fieldClause),
		Masks:   true},
	{Name: "new-title", Slot: SlotTitle, Intents: []Intent{IntentUpdateTask, IntentUpdateProject},
		Extract: captureText(`\b(?:nuevo\s+(?:titulo|nombre)|(?:titulo|nombre)\s+nuevo)\s*:?\s*(?:(?:a|sea|es)\s+)?(.+)$`, false, nil, punctClause, fieldClause),
		Masks:   true},

	// description
	{Name: "description", Slot: SlotDescription,
		Extract: captureText(`\b(?:con\s+)?(?:(?:la|una)\s+)?descripcion\s*:?\s*(?:(?:de|que\s+diga|sea)\s+)?(.+)$`, true, nil, projectClause, dueClause, punctClause)},

	// status
	{Name: "explicit-status", Slot: SlotStatus,
		Extract: captureWord(`\b(?:como|a|al|en\s+estado|estado(?:\s+a)?)\s+(` + statusWords + `)\b`)},
	{Name: "in-progress", Slot: SlotStatus,
		Extract: captureWord(`\b(en\s+(?:progreso|curso|proceso))\b`)},
	{Name: "bare-status", Slot: SlotStatus, Intents: []Intent{IntentSearchTask, IntentCountTasks},
		Extract: captureWord(`\b(pendientes?|completad[ao]s?|terminad[ao]s?|finalizad[ao]s?|bloquead[ao]s?|hech[ao]s|iniciad[ao]s|empezad[ao]s)\b`)},
	{Name: "complete-verb", Slot: SlotStatus, Intents: []Intent{IntentUpdateTask},
		Extract: fixed(verbLead+`(?:completa|completar|termina|terminar|finaliza|finalizar|cierra|cerrar)\b`, "done")},
	{Name: "start-verb", Slot: SlotStatus, Intents: []Intent{IntentUpdateTask},
		Extract: fixed(verbLead+`(?:empieza|empezar|inicia|iniciar|comienza|comenzar|arranca|arrancar)\b`, "in_progress")},
	{Name: "block-verb", Slot: SlotStatus, Intents: []Intent{IntentUpdateTask},
		Extract: fixed(verbLead+`(?:bloquea|bloquear)\b`, "blocked")},

	// priority
	{Name: "priority-value", Slot: SlotPriority,
		Extract: captureWord(`\bprioridad\s+(?:(?:es|de|a|en|sea|muy)\s+)?(` + priorityWordList + `)\b`)},
	{Name: "value-priority", Slot: SlotPriority,
		Extract: captureWord(`\b(alta|media|baja|maxima|minima)\s+prioridad\b`)},
	{Name: "priority-change", Slot: SlotPriority, Intents: []Intent{IntentUpdateProject},
		Extract: captureWord(`\bprioridad\b.*?\s(?:a|en)\s+(` + priorityWordList + `)\b`)},
	{Name: "urgent", Slot: SlotPriority,
		Extract: captureWord(`\b(urgente|critica)\b`)},

	// dueDate
	{Name: "date-expression", Slot: SlotDueDate, Extract: dateExpression, Masked: true},

	// projectReference
	{Name: "quoted-project", Slot: SlotProjectReference, Extract: quoted(`\bproyecto\s+`)},
	{Name: "project-clause", Slot: SlotProjectReference,
		Extract: captureText(`(?:^|\s)(?:en|para|al|a|del?|dentro\s+del?)\s+(?:(?:el|mi|nuestro)\s+)?proyecto\s+(?:(?:llamado|de\s+nombre)\s+)?(.+)$`, true, nil, scopeCuts...)},
	{Name: "project-mention", Slot: SlotProjectReference,
		Extract: captureText(`\bproyecto\s+(?:llamado\s+)?(.+)$`, true, nil, scopeCuts...)},

	// referenceText
	{Name: "quoted-reference", Slot: SlotReferenceText, Extract: quoted(`(?:^|\s)`)},
	{Name: "rename-task-reference", Slot: SlotReferenceText, Intents: []Intent{IntentUpdateTask},
		Extract: captureText(`\b(?:renombra\w*|cambia\w*\s+(?:el\s+)?(?:titulo|nombre)\s+de)\s+(?:la\s+)?(?:tarea\s+)?(.+?)\s+(?:a|por|como)\s+\S`, false, referencePrefix)},
	{Name: "rename-project-reference", Slot: SlotReferenceText, Intents: []Intent{IntentUpdateProject},
		Extract: captureText(`\b(?:renombra\w*|cambia\w*\s+(?:el\s+)?(?:titulo|nombre)\s+del?)\s+(?:el\s+)?(?:proyecto\s+)?(.+?)\s+(?:a|por|como)\s+\S`, false, nil)},
	{Name: "task-reference", Slot: SlotReferenceText, Intents: []Intent{IntentUpdateTask},
		Extract: captureText(`\btarea\s+(?:(?:llamada|titulada|que\s+se\s+llama)\s+)?(.+)$`, true, projectPrefix, updateTaskCuts...)},
	{Name: "verb-task-reference", Slot: SlotReferenceText, Intents: []Intent{IntentUpdateTask},
		Extract: captureText(verbLead+`(?:marca\w*|pon(?:er|la)?|deja\w*|completa\w*|termina\w*|finaliza\w*|cierra|cerrar|empieza|empezar|inicia\w*|comienza|comenzar|bloquea\w*|actualiza\w*|modifica\w*|cambia\w*|edita\w*|mueve|mover|reprograma\w*|pospon\w*)\s+(?:(?:la|el|mi)\s+)?(.+)$`, true, referencePrefix, updateTaskCuts...)},
	{Name: "project-reference", Slot: SlotReferenceText, Intents: []Intent{IntentUpdateProject},
		Extract: captureText(`\bproyecto\s+(?:(?:llamado|titulado|que\s+se\s+llama)\s+)?(.+)$`, true, nil, updateProjectCuts...)},
	{Name: "tasks-about", Slot: SlotReferenceText, Intents: []Intent{IntentSearchTask},
		Extract: captureText(`\btareas?\s+(?:(?:pendientes?|completad[ao]s?|terminad[ao]s?|bloquead[ao]s?|en\s+(?:progreso|curso))\s+)?(?:que\s+)?(?:de|sobre|con|acerca\s+de|relacionadas?\s+con|contengan?|mencionen?|llamadas?|digan?)\s+(.+)$`, false, referencePrefix, searchCuts...)},
	{Name: "find-task", Slot: SlotReferenceText, Intents: []Intent{IntentSearchTask},
		Extract: captureText(`\b(?:busca\w*|encuentra\w*)\s+(?:la\s+)?tarea\s+(.+)$`, false, referencePrefix, searchCuts...)},
	{Name: "projects-about", Slot: SlotReferenceText, Intents: []Intent{IntentSearchProject},
		Extract: captureText(`\bproyectos?\s+(?:que\s+)?(?:de|sobre|con|acerca\s+de|relacionados?\s+con|contengan?|llamados?)\s+(.+)$`, false, referencePrefix, fieldClause, punctClause, priorityClause)},
	{Name: "find-project", Slot: SlotReferenceText, Intents: []Intent{IntentSearchProject},
		Extract: captureText(`\b(?:busca\w*|encuentra\w*)\s+(?:el\s+)?proyecto\s+(.+)$`, false, referencePrefix, fieldClause, punctClause, priorityClause)},
}

// ExtractSlots fills the slots intent declares and slots still lacks by
// running the strategy table over raw. It returns the names of the rules
// that produced a value.
func ExtractSlots(intent Intent, raw string, ref time.Time, slots *SlotSet) []string {
	aligned := language.Align(raw)
	masked := aligned
	var fired []string
	for _, rule := range slotRules {
		if !rule.appliesTo(intent) {
			continue
		}
		present := slots.Has(rule.Slot)
		// Masking rules still run when their slot came from the model.
		if present && !rule.Masks {
			continue
		}
		text := aligned
		if rule.Masked {
			text = masked
		}
		c, ok := rule.Extract(text, ref)
		if !ok {
			continue
		}
		if rule.Masks {
			masked = masked.Blank(c.Start, c.End)
		}
		if !present && slots.Set(rule.Slot, c.Value, ref) {
			fired = append(fired, rule.Name)
		}
	}
	return fired
}

// captureText returns the raw text of group 1, cut at the earliest clause
// marker. With dates set, a date expression also ends the capture. A capture
// whose folded form matches reject is discarded.
func captureText(pattern string, dates bool, reject *regexp.Regexp, cuts ...*regexp.Regexp) extractFunc {
	re := regexp.MustCompile(pattern)
	return func(a language.Aligned, _ time.Time) (capture, bool) {
		m := re.FindStringSubmatchIndex(a.Folded)
		if m == nil || m[2] < 0 {
			return capture{}, false
		}
		start, end := m[2], m[3]
		if reject != nil && reject.MatchString(a.Folded[start:end]) {
			return capture{}, false
		}
		end = start + clauseEnd(a.Folded[start:end], dates, cuts)
		value := cleanText(a.Slice(start, end))
		return capture{Value: value, Start: start, End: end}, value != ""
	}
}

// clauseEnd returns the length of segment up to the first clause marker,
// with trailing filler words removed.
func clauseEnd(segment string, dates bool, cuts []*regexp.Regexp) int {
	cut := len(segment)
	for _, re := range cuts {
		if loc := re.FindStringIndex(segment); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	if dates {
		if idx := language.DatePhraseIndex(segment); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	if loc := trailingFiller.FindStringIndex(segment[:cut]); loc != nil {
		cut = loc[0]
	}
	return cut
}

// quoted returns the raw text between the first pair of quotes that follows
// lead.
func quoted(lead string) extractFunc {
	re := regexp.MustCompile(lead + `["“«']([^"”»']+)["”»']`)
	return func(a language.Aligned, _ time.Time) (capture, bool) {
		m := re.FindStringSubmatchIndex(a.Folded)
		if m == nil {
			return capture{}, false
		}
		value := cleanText(a.Slice(m[2], m[3]))
		return capture{Value: value, Start: m[2], End: m[3]}, value != ""
	}
}

// captureWord returns group 1 in folded form, for vocabulary slots.
func captureWord(pattern string) extractFunc {
	re := regexp.MustCompile(pattern)
	return func(a language.Aligned, _ time.Time) (capture, bool) {
		m := re.FindStringSubmatchIndex(a.Folded)
		if m == nil {
			return capture{}, false
		}
		return capture{Value: a.Folded[m[2]:m[3]], Start: m[2], End: m[3]}, true
	}
}

// fixed yields value whenever pattern matches.
func fixed(pattern, value string) extractFunc {
	re := regexp.MustCompile(pattern)
	return func(a language.Aligned, _ time.Time) (capture, bool) {
		return capture{Value: value}, re.MatchString(a.Folded)
	}
}

func dateExpression(a language.Aligned, ref time.Time) (capture, bool) {
	value, ok := language.ResolveDate(a.Raw, ref)
	return capture{Value: value}, ok
}
