package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

var (
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#10B981")
	mutedColor     = lipgloss.Color("#6B7280")
	dangerColor    = lipgloss.Color("#EF4444")
	warnColor      = lipgloss.Color("#F59E0B")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	okStyle = lipgloss.NewStyle().
		Foreground(secondaryColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(dangerColor)

	warnStyle = lipgloss.NewStyle().
			Foreground(warnColor)

	dimStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	idColumn     = lipgloss.NewStyle().Width(10).Foreground(mutedColor)
	titleColumn  = lipgloss.NewStyle().Width(32)
	statusColumn = lipgloss.NewStyle().Width(14)
	dateColumn   = lipgloss.NewStyle().Width(12)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderResult prints the spoken message followed by a dimmed trace of how
// the command was understood.
func renderResult(w io.Writer, r command.CommandResult) {
	switch {
	case !r.Success:
		fmt.Fprintln(w, errorStyle.Render("✗ "+r.Message))
	case r.ErrorKind == command.ErrorClassificationAmbiguous:
		fmt.Fprintln(w, warnStyle.Render("? "+r.Message))
	default:
		fmt.Fprintln(w, okStyle.Render("✓ "+r.Message))
	}

	trace := []string{"intent=" + r.Intent.String()}
	if r.Action != "" {
		trace = append(trace, "action="+string(r.Action))
	}
	if r.ErrorKind != "" {
		trace = append(trace, "error="+string(r.ErrorKind))
	}
	if r.Reference != nil {
		trace = append(trace, fmt.Sprintf("match=%s (%.1f)", r.Reference.Title, r.Reference.Confidence))
	}
	if slots := r.Slots.String(); slots != "{}" {
		trace = append(trace, "slots="+slots)
	}
	fmt.Fprintln(w, dimStyle.Render("  "+strings.Join(trace, " ")))
}

func renderProjects(w io.Writer, projects []planning.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No projects yet."))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Projects (%d)", len(projects))))
	for _, p := range projects {
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			idColumn.Render(shortID(p.ID)),
			titleColumn.Render(p.Title),
			statusColumn.Render(p.Priority.DisplayName()),
			dateColumn.Render(p.DueDate),
		)
		fmt.Fprintln(w, row)
	}
}

func renderTasks(w io.Writer, tasks []planning.Task, projectTitles map[string]string) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No tasks found."))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Tasks (%d)", len(tasks))))
	for _, t := range tasks {
		status := statusColumn.Render(t.Status.DisplayName(false))
		if t.Status.IsComplete() {
			status = okStyle.Inherit(statusColumn).Render(t.Status.DisplayName(false))
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			idColumn.Render(shortID(t.ID)),
			titleColumn.Render(t.Title),
			status,
			dateColumn.Render(t.DueDate),
			dimStyle.Render(projectTitles[t.ProjectID]),
		)
		fmt.Fprintln(w, row)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
