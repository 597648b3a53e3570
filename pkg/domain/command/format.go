package command

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// DefaultListPreview is how many items a summary names before "y N más".
const DefaultListPreview = 3

const assistanceHelp = `Puedo crear, buscar, actualizar y contar tus tareas y proyectos. ` +
	`Prueba con "crear tarea Comprar pan en el proyecto Casa" o "¿cuántas tareas pendientes tengo?".`

// Formatter renders command results as Spanish sentences.
type Formatter struct {
	limit int
}

// NewFormatter returns a formatter naming at most preview items in lists.
func NewFormatter(preview int) *Formatter {
	if preview <= 0 {
		preview = DefaultListPreview
	}
	return &Formatter{limit: preview}
}

// Format returns the user-facing message for r.
func (f *Formatter) Format(r CommandResult) string {
	if !r.Success {
		return f.failure(r)
	}
	switch {
	case r.Intent == IntentAssistance:
		if r.ErrorKind == ErrorClassificationAmbiguous {
			return "No entendí tu petición. " + assistanceHelp
		}
		return assistanceHelp
	case r.Task != nil && r.Action == ActionTaskCreated:
		return f.taskCreated(r)
	case r.Project != nil && r.Action == ActionProjectCreated:
		return f.projectCreated(r)
	case r.Task != nil && r.Action == ActionTaskUpdated:
		return "Tarea " + quote(r.Task.Title) + " actualizada: " + f.changes(r) + "."
	case r.Project != nil && r.Action == ActionProjectUpdated:
		return "Proyecto " + quote(r.Project.Title) + " actualizado: " + f.changes(r) + "."
	case r.Search != nil:
		return f.search(r.Intent.Kind(), *r.Search)
	case r.Count != nil:
		return f.count(*r.Count)
	}
	return "Listo."
}

func (f *Formatter) taskCreated(r CommandResult) string {
	var b strings.Builder
	b.WriteString("Tarea " + quote(r.Task.Title) + " creada")
	if r.Reference != nil {
		b.WriteString(" en el proyecto " + quote(r.Reference.Title))
	}
	if r.Task.DueDate != "" {
		b.WriteString(" para el " + r.Task.DueDate)
	}
	b.WriteString(".")
	if r.Reference != nil && r.Reference.IsGuess() {
		b.WriteString(" No indicaste un proyecto reconocible, así que usé " + quote(r.Reference.Title) + ".")
	}
	return b.String()
}

func (f *Formatter) projectCreated(r CommandResult) string {
	msg := "Proyecto " + quote(r.Project.Title) + " creado con prioridad " + r.Project.Priority.DisplayName()
	if r.Project.DueDate != "" {
		msg += " para el " + r.Project.DueDate
	}
	return msg + "."
}

func (f *Formatter) changes(r CommandResult) string {
	var parts []string
	for _, slot := range r.Changed {
		switch slot {
		case SlotTitle:
			parts = append(parts, "título "+quote(r.Slots.Value(SlotTitle)))
		case SlotDescription:
			parts = append(parts, "descripción actualizada")
		case SlotStatus:
			if r.Slots.Status != nil {
				parts = append(parts, "estado "+r.Slots.Status.DisplayName(false))
			}
		case SlotPriority:
			if r.Slots.Priority != nil {
				parts = append(parts, "prioridad "+r.Slots.Priority.DisplayName())
			}
		case SlotDueDate:
			parts = append(parts, "fecha límite "+r.Slots.Value(SlotDueDate))
		}
	}
	if len(parts) == 0 {
		return "sin cambios"
	}
	return joinList(parts)
}

func (f *Formatter) search(kind planning.Kind, s SearchResults) string {
	if s.Total == 0 {
		if s.Query != "" {
			return fmt.Sprintf("No encontré %s que coincidan con %s.", noun(kind, 2), quote(s.Query))
		}
		return fmt.Sprintf("No encontré %s.", noun(kind, 2))
	}
	titles := s.Titles()
	items := make([]string, len(titles))
	for i, t := range titles {
		items[i] = quote(t)
	}
	return fmt.Sprintf("Encontré %d %s: %s.", s.Total, noun(kind, s.Total), f.preview(items, s.Total))
}

func (f *Formatter) count(c CountSummary) string {
	subject := noun(c.Kind, c.Total)
	qualifier := ""
	if c.Filter != "" {
		qualifier = " " + categoryLabel(c.Kind, c.Filter, c.Total)
	}
	scope := ""
	if c.Scope != "" {
		scope = " en el proyecto " + quote(c.Scope)
	}

	switch {
	case c.Total == 0:
		return fmt.Sprintf("No tienes %s%s%s.", noun(c.Kind, 0), qualifier, scope)
	case c.Filter != "":
		return fmt.Sprintf("Tienes %d %s%s%s.", c.Total, subject, qualifier, scope)
	}

	var parts []string
	for _, b := range c.ByCategory {
		if b.Count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", b.Count, categoryLabel(c.Kind, b.Category, b.Count)))
		}
	}
	if c.Total == 1 {
		only := "una sola tarea"
		if c.Kind == planning.KindProject {
			only = "un solo proyecto"
		}
		detail := ""
		if len(parts) == 1 {
			detail = " (" + strings.TrimPrefix(parts[0], "1 ") + ")"
		}
		return fmt.Sprintf("Tienes %s%s%s.", only, scope, detail)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Tienes %d %s%s.", c.Total, subject, scope)
	}
	return fmt.Sprintf("Tienes %d %s%s: %s.", c.Total, subject, scope, joinList(parts))
}

func (f *Formatter) preview(items []string, total int) string {
	if len(items) > f.limit {
		items = items[:f.limit]
	}
	if rest := total - len(items); rest > 0 {
		return strings.Join(items, ", ") + fmt.Sprintf(" y %d más", rest)
	}
	return joinList(items)
}

func (f *Formatter) failure(r CommandResult) string {
	fail := r.Failure
	if fail == nil {
		fail = &Failure{Kind: r.ErrorKind, Entity: r.Intent.Kind()}
	}
	entity := fail.Entity
	if entity == "" {
		entity = r.Intent.Kind()
	}

	switch fail.Kind {
	case ErrorExtractionIncomplete:
		switch fail.Slot {
		case SlotTitle:
			if entity == planning.KindProject {
				return `No pude identificar el nombre del proyecto. Prueba con "crear proyecto Apolo".`
			}
			return `No pude identificar el título de la tarea. Prueba con "crear tarea Comprar pan".`
		case SlotReferenceText:
			return fmt.Sprintf("No pude identificar qué %s deseas %s.", noun(entity, 1), verbFor(r.Intent))
		}
		if entity == planning.KindProject {
			return fmt.Sprintf("No encontré qué cambiar en el proyecto %s. Indica un nuevo título, descripción, prioridad o fecha.", quote(fail.Reference))
		}
		return fmt.Sprintf("No encontré qué cambiar en la tarea %s. Indica un nuevo título, descripción, estado o fecha.", quote(fail.Reference))

	case ErrorEntityNotFound:
		if fail.Reference == "" {
			if entity == planning.KindProject {
				return `No hay proyectos disponibles. Crea primero uno con "crear proyecto <nombre>".`
			}
			return fmt.Sprintf("No pude identificar qué tarea deseas %s.", verbFor(r.Intent))
		}
		if entity == planning.KindProject {
			return fmt.Sprintf("No encontré ningún proyecto parecido a %s.", quote(fail.Reference))
		}
		return fmt.Sprintf("No encontré ninguna tarea parecida a %s.", quote(fail.Reference))

	case ErrorValidationConflict:
		switch fail.Slot {
		case SlotTitle:
			return fmt.Sprintf("Ya existe un proyecto llamado %s.", quote(fail.Value))
		case SlotDueDate:
			return fmt.Sprintf("La fecha límite %s ya pasó. Indica una fecha de hoy en adelante.", fail.Value)
		}
		return "No pude guardar los cambios porque los datos no son válidos."

	case ErrorClassificationAmbiguous:
		return "No entendí tu petición. " + assistanceHelp
	}
	return "No pude completar la operación porque un servicio no respondió. Inténtalo de nuevo en unos momentos."
}

func verbFor(intent Intent) string {
	switch {
	case intent.IsUpdate():
		return "actualizar"
	case intent.IsCreate():
		return "usar"
	default:
		return "consultar"
	}
}

func noun(kind planning.Kind, n int) string {
	word := "tarea"
	if kind == planning.KindProject {
		word = "proyecto"
	}
	if n == 1 {
		return word
	}
	return word + "s"
}

// categoryLabel renders a status (tasks) or priority (projects) agreeing
// in number with n.
func categoryLabel(kind planning.Kind, category string, n int) string {
	if kind == planning.KindProject {
		return "de prioridad " + planning.TaskPriority(category).DisplayName()
	}
	return planning.TaskStatus(category).DisplayName(n != 1)
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " y " + items[len(items)-1]
}

func quote(s string) string {
	return `"` + s + `"`
}
