package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dictado/internal/infrastructure/config"
	"github.com/felixgeelhaar/dictado/pkg/storage"
)

var initBackend string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a dictado workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}

		cfgPath := filepath.Join(root, storage.DictadoDir, config.ConfigFile)
		if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) {
			cfg := config.Default()
			if initBackend != "" {
				cfg.Store.Backend = initBackend
			}
			if err := cfg.Validate(); err != nil {
				return MapError(err)
			}
			if err := config.Save(root, cfg); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
		}

		services, err := loadServices(root)
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		if err := services.Workspace.Store.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Successfully initialized dictado workspace (%s store) in %s\n",
			services.Workspace.Config.Store.Backend, root)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initBackend, "backend", "", "Store backend (filesystem, sqlite)")
	RootCmd.AddCommand(initCmd)
}
