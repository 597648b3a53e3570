package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dictado/pkg/application"
	"github.com/felixgeelhaar/dictado/pkg/domain/command"
)

var (
	sayIntent  string
	sayProject string
	sayJSON    bool
)

var sayCmd = &cobra.Command{
	Use:   "say <texto>",
	Short: "Interpret a transcript and apply it to the workspace",
	Long: `Interpret a Spanish transcript and apply it to the workspace.

Examples:
  dictado say "crear proyecto Apolo con prioridad alta"
  dictado say "buscar tareas de marketing"
  dictado say --intent createTask --project <id> "Comprar pan"
  dictado say --json "cuántos proyectos tengo"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := application.Request{
			Text:          strings.Join(args, " "),
			ProjectIDHint: sayProject,
		}
		if sayIntent != "" {
			intent, err := command.ParseIntent(sayIntent)
			if err != nil {
				return NewCLIError(err.Error(), fmt.Sprintf("Use one of: %s", intentNames()), err)
			}
			req.IntentHint = intent
		}

		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		result := services.Commands.ProcessTranscript(cmd.Context(), req)
		if sayJSON {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		renderResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func intentNames() string {
	names := make([]string, 0, len(command.AllIntents()))
	for _, i := range command.AllIntents() {
		names = append(names, i.String())
	}
	return strings.Join(names, ", ")
}

func init() {
	sayCmd.Flags().StringVar(&sayIntent, "intent", "", "Skip classification and use this intent")
	sayCmd.Flags().StringVar(&sayProject, "project", "", "Project id the command refers to")
	sayCmd.Flags().BoolVar(&sayJSON, "json", false, "Output the command result as JSON")
	RootCmd.AddCommand(sayCmd)
}
