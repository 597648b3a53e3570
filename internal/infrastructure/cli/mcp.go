package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	inframcp "github.com/felixgeelhaar/dictado/internal/infrastructure/mcp"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the dictado MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("DICTADO_SKIP_MCP_START") == "true" {
			return nil
		}
		transport := strings.ToLower(mcpTransport)
		if transport != "stdio" && transport != "" && transport != "http" {
			return NewCLIError(fmt.Sprintf("unsupported transport: %s", mcpTransport), "Use --transport stdio or --transport http", nil)
		}

		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		server, err := inframcp.NewServer(services)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if transport == "http" {
			return server.ServeHTTP(ctx, mcpAddr)
		}
		return server.ServeStdio(ctx)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8090", "Address for the http transport")
	RootCmd.AddCommand(mcpCmd)
}
