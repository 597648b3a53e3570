package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dictado/pkg/domain/language"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

var (
	projectsJSON bool

	tasksStatus  string
	tasksProject string
	tasksQuery   string
	tasksJSON    bool
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		projects, err := services.Workspace.Store.FindProjects(cmd.Context())
		if err != nil {
			return MapError(fmt.Errorf("failed to list projects: %w", err))
		}
		if projectsJSON {
			if projects == nil {
				projects = []planning.Project{}
			}
			return writeJSON(cmd.OutOrStdout(), projects)
		}
		renderProjects(cmd.OutOrStdout(), projects)
		return nil
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks",
	Long: `List tasks, optionally filtered.

  --status   Status word (pendiente, en curso, bloqueada, completada, or the canonical value)
  --project  Project id or title
  --query    Accent-insensitive text filter`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck
		store := services.Workspace.Store

		projects, err := store.FindProjects(cmd.Context())
		if err != nil {
			return MapError(fmt.Errorf("failed to list projects: %w", err))
		}

		filter := planning.TaskFilter{Text: tasksQuery}
		if tasksStatus != "" {
			status, ok := planning.LookupTaskStatus(tasksStatus)
			if !ok {
				return NewCLIError(fmt.Sprintf("unknown status %q", tasksStatus), "Use pendiente, en curso, bloqueada or completada", nil)
			}
			filter.Status = status
		}
		if tasksProject != "" {
			p, ok := findProject(projects, tasksProject)
			if !ok {
				return MapError(fmt.Errorf("%w: %s", planning.ErrProjectNotFound, tasksProject))
			}
			filter.ProjectID = p.ID
		}

		tasks, err := store.FindTasks(cmd.Context(), filter)
		if err != nil {
			return MapError(fmt.Errorf("failed to list tasks: %w", err))
		}
		if tasksJSON {
			if tasks == nil {
				tasks = []planning.Task{}
			}
			return writeJSON(cmd.OutOrStdout(), tasks)
		}

		titles := make(map[string]string, len(projects))
		for _, p := range projects {
			titles[p.ID] = p.Title
		}
		renderTasks(cmd.OutOrStdout(), tasks, titles)
		return nil
	},
}

// findProject matches by id, then by folded title.
func findProject(projects []planning.Project, ref string) (planning.Project, bool) {
	for _, p := range projects {
		if p.ID == ref {
			return p, true
		}
	}
	key := language.Normalize(ref)
	for _, p := range projects {
		if language.Normalize(p.Title) == key {
			return p, true
		}
	}
	return planning.Project{}, false
}

func init() {
	projectsCmd.Flags().BoolVar(&projectsJSON, "json", false, "Output in JSON format")

	tasksCmd.Flags().StringVarP(&tasksStatus, "status", "s", "", "Filter by status")
	tasksCmd.Flags().StringVarP(&tasksProject, "project", "p", "", "Filter by project id or title")
	tasksCmd.Flags().StringVarP(&tasksQuery, "query", "q", "", "Filter by text")
	tasksCmd.Flags().BoolVar(&tasksJSON, "json", false, "Output in JSON format")

	RootCmd.AddCommand(projectsCmd)
	RootCmd.AddCommand(tasksCmd)
}
