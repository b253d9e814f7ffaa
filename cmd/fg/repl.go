package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/featuregraph/fg/internal/persist"
	"github.com/featuregraph/fg/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive feature graph shell",
	Long: `Start an interactive shell for working with the feature graph
without re-loading it per command.

The shell holds the workspace lock so two interactive sessions can't
fight over the same graph. Type 'help' in the shell for available
commands.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			fatal(err)
		}
		defer s.Close()

		lockPath, err := persist.AcquireWorkspaceLock(s.workspace, s.cfg.Actor, version)
		if err != nil {
			fatal(err)
		}
		defer func() {
			if err := persist.ReleaseWorkspaceLock(lockPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}()

		r, err := repl.New(&repl.Config{
			Snapshot:   s.snapshot,
			Engine:     s.engine,
			Heuristics: s.heur,
			Audit:      s.audit,
			Actor:      s.cfg.Actor,
		})
		if err != nil {
			fatal(err)
		}
		if err := r.Run(ctx); err != nil {
			fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
