package command

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/dictado/pkg/domain/language"
)

// intentRule maps a normalized-text pattern to an intent. A rule with an
// Exclude pattern does not fire when Exclude also matches. When Crossing is
// set, a match only counts if its first group, the words between the verb and
// the record noun, does not match Crossing.
type intentRule struct {
	Name     string
	Intent   Intent
	Pattern  *regexp.Regexp
	Exclude  *regexp.Regexp
	Crossing *regexp.Regexp
}

func (r intentRule) matches(text string) bool {
	if r.Crossing == nil {
		return r.Pattern.MatchString(text)
	}
	for off := 0; off < len(text); {
		m := r.Pattern.FindStringSubmatchIndex(text[off:])
		if m == nil {
			return false
		}
		if m[2] < 0 || !r.Crossing.MatchString(text[off+m[2]:off+m[3]]) {
			return true
		}
		// Retry from the next word so a later verb still gets its chance.
		next := strings.IndexByte(text[off+m[0]:], ' ')
		if next < 0 {
			return false
		}
		off += m[0] + next + 1
	}
	return false
}

const (
	createVerbs = `crea|crear|creame|agrega|agregar|agregame|añade|añadir|añademe|anade|anadir|registra|registrar|anota|anotar|apunta|apuntar|genera|generar|nueva|nuevo`
	updateVerbs = `actualiza|actualizar|modifica|modificar|cambia|cambiar|edita|editar|renombra|renombrar|mueve|mover|reprograma|reprogramar|pospon|posponer|pon|poner`
	searchVerbs = `busca|buscar|buscame|encuentra|encontrar|encuentrame|muestra|mostrar|muestrame|enseña|enseñar|enseñame|lista|listar|listame|dame|ver|mira|mirar|consulta|consultar|cuales|que|hay|tengo|tienes`
	statusWords = `pendiente|en progreso|en curso|en proceso|bloqueada|bloqueado|completada|completado|terminada|terminado|hecha|hecho|finalizada|finalizado|lista`
	countLead   = `(?:cuant[ao]s|numero\s+de|cantidad\s+de|total\s+de)\s+(?:(?:son|hay|tengo|tienes|mis|las|los|de)\s+){0,2}`
	leadIn      = `^(?:por\s+favor\s+)?(?:puedes\s+|podrias\s+)?`
)

// intentRules is evaluated top to bottom on normalized text; the first match
// wins. Order encodes precedence: counting beats creating, creating beats
// updating, updating beats searching, and within each pair the task rule is
// tried before the project rule so "cambia la tarea del proyecto X" is a task
// update. Create rules stop at the first record noun after the verb, so
// "crear proyecto Tareas del hogar" creates a project.
var intentRules = []intentRule{
	{
		Name:    "count-tasks",
		Intent:  IntentCountTasks,
		Pattern: regexp.MustCompile(`\b` + countLead + `tareas\b|\bcont(?:ar|ame|ame\s+las)\s+(?:(?:mis|las)\s+)?tareas\b`),
	},
	{
		Name:    "count-projects",
		Intent:  IntentCountProjects,
		Pattern: regexp.MustCompile(`\b` + countLead + `proyectos\b|\bcont(?:ar|ame|ame\s+los)\s+(?:(?:mis|los)\s+)?proyectos\b`),
	},
	{
		Name:     "create-task",
		Intent:   IntentCreateTask,
		Pattern:  regexp.MustCompile(`\b(?:` + createVerbs + `)\b((?:\s+\S+){0,3}?)\s+tareas?\b|\bnueva\s+tarea\b`),
		Crossing: regexp.MustCompile(`\bproyectos?\b`),
	},
	{
		Name:    "create-reminder",
		Intent:  IntentCreateTask,
		Pattern: regexp.MustCompile(leadIn + `(?:recuerdame|recordarme|recuerda(?:me)?\s+que)\b`),
	},
	{
		Name:     "create-project",
		Intent:   IntentCreateProject,
		Pattern:  regexp.MustCompile(`\b(?:` + createVerbs + `)\b((?:\s+\S+){0,3}?)\s+proyecto\b|\bnuevo\s+proyecto\b`),
		Crossing: regexp.MustCompile(`\btareas?\b`),
	},
	{
		Name:    "update-task",
		Intent:  IntentUpdateTask,
		Pattern: regexp.MustCompile(`\b(?:` + updateVerbs + `)\b.*\btarea\b`),
	},
	{
		Name:    "update-task-mark-as",
		Intent:  IntentUpdateTask,
		Pattern: regexp.MustCompile(`\b(?:marca|marcar|marcala|pon|poner|ponla|deja|dejar|dejala)\b.*\b(?:como\s+(?:` + statusWords + `)|en\s+(?:progreso|curso|proceso))\b`),
		Exclude: regexp.MustCompile(`\bproyecto\b.*\bprioridad\b`),
	},
	{
		Name:    "update-task-status-verb",
		Intent:  IntentUpdateTask,
		Pattern: regexp.MustCompile(leadIn + `(?:completa|completar|termina|terminar|finaliza|finalizar|cierra|cerrar|empieza|empezar|inicia|iniciar|comienza|comenzar|bloquea|bloquear)\b`),
		Exclude: regexp.MustCompile(`\bproyecto\b`),
	},
	{
		Name:    "update-project",
		Intent:  IntentUpdateProject,
		Pattern: regexp.MustCompile(`\b(?:` + updateVerbs + `|marca|marcar)\b.*\bproyecto\b`),
	},
	{
		Name:    "update-project-priority",
		Intent:  IntentUpdateProject,
		Pattern: regexp.MustCompile(`\b(?:sube|subir|baja|bajar)\s+(?:la\s+)?prioridad\b`),
	},
	{
		Name:    "search-tasks",
		Intent:  IntentSearchTask,
		Pattern: regexp.MustCompile(`\b(?:` + searchVerbs + `)\b.*\btareas?\b|^(?:mis\s+)?tareas\b`),
	},
	{
		Name:    "search-projects",
		Intent:  IntentSearchProject,
		Pattern: regexp.MustCompile(`\b(?:` + searchVerbs + `)\b.*\bproyectos?\b|^(?:mis\s+)?proyectos\b`),
	},
}

// MatchIntent runs the deterministic rule table against text. It returns the
// matched intent and the name of the rule that fired.
func MatchIntent(text string) (Intent, string, bool) {
	normalized := language.Normalize(text)
	if normalized == "" {
		return "", "", false
	}
	for _, rule := range intentRules {
		if !rule.matches(normalized) {
			continue
		}
		if rule.Exclude != nil && rule.Exclude.MatchString(normalized) {
			continue
		}
		return rule.Intent, rule.Name, true
	}
	return "", "", false
}
