package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

var statsJSON bool

type statsOutput struct {
	Projects int            `json:"projects"`
	Tasks    int            `json:"tasks"`
	ByStatus map[string]int `json:"by_status"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show project and task counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck
		store := services.Workspace.Store
		ctx := cmd.Context()

		out := statsOutput{ByStatus: map[string]int{}}
		if out.Projects, err = store.Count(ctx, planning.KindProject, planning.TaskFilter{}); err != nil {
			return MapError(fmt.Errorf("failed to count projects: %w", err))
		}
		if out.Tasks, err = store.Count(ctx, planning.KindTask, planning.TaskFilter{}); err != nil {
			return MapError(fmt.Errorf("failed to count tasks: %w", err))
		}
		for _, status := range planning.AllTaskStatuses() {
			n, err := store.Count(ctx, planning.KindTask, planning.TaskFilter{Status: status})
			if err != nil {
				return MapError(fmt.Errorf("failed to count tasks: %w", err))
			}
			out.ByStatus[string(status)] = n
		}

		if statsJSON {
			return writeJSON(cmd.OutOrStdout(), out)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, headerStyle.Render("Workspace"))
		fmt.Fprintf(w, "  Projects: %d\n", out.Projects)
		fmt.Fprintf(w, "  Tasks:    %d\n", out.Tasks)
		for _, status := range planning.AllTaskStatuses() {
			fmt.Fprintf(w, "    %-12s %d\n", status.DisplayName(true), out.ByStatus[string(status)])
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(statsCmd)
}
