// Command dephoist rewrites a resolved package dependency graph into a
// flatter, semantically-equivalent graph for nested-directory installation.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/dephoist/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dephoist",
		Short: "Hoist a resolved package dependency graph for nested-directory installation",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbosity, _ := cmd.Flags().GetString("verbosity")
			switch verbosity {
			case "debug":
				logging.SetLevel(slog.LevelDebug)
			case "warn":
				logging.SetLevel(slog.LevelWarn)
			case "error":
				logging.SetLevel(slog.LevelError)
			}
		},
	}

	root.PersistentFlags().String("verbosity", "", "log level: debug, info, warn, error")
	root.AddCommand(newHoistCmd(), newWebCmd(), newVerifyCmd())
	return root
}
