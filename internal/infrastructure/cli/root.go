package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Global flags.
var (
	projectPath string
	logLevel    string
	logFormat   string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "dictado",
	Version: Version,
	Short:   "Voice commands for your projects and tasks",
	Long: `Dictado turns Spanish voice transcripts into actions on projects and tasks.

  dictado say "crear tarea Comprar pan mañana en el proyecto Casa"
  dictado say "cuántas tareas pendientes tiene el proyecto Casa"
  dictado say "marca la tarea Informe mensual como completada"`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&projectPath, "path", "C", "", "Workspace directory (defaults to the current directory)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}
