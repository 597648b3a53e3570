package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/dictado/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		exitCode := 1
		var cliErr *cli.CLIError
		if errors.As(cli.MapError(err), &cliErr) {
			if cliErr.Hint != "" {
				fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
			}
			exitCode = cliErr.ExitCode
		}
		os.Exit(exitCode)
	}
}
