package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/featuregraph/fg/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a feature graph in the workspace",
	Long: `Initialize a feature graph by creating the .fg/ directory.

This creates:
  - .fg/config.yaml (workspace configuration)
  - .fg/graph.yaml (empty version-1 graph)
  - .fg/fg.db (SQLite audit database)

Example:
  cd ~/myproject
  fg init`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg := config.DefaultConfig()
		if err := cfg.Save(workspaceFlag); err != nil {
			fatal(err)
		}

		// Opening the session persists the empty graph and creates the
		// audit database schema.
		s, err := openSession(ctx)
		if err != nil {
			fatal(err)
		}
		defer s.Close()

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Initialized feature graph in %s\n", green("✓"), filepath.Join(s.workspace, ".fg"))
		fmt.Printf("  Graph:    %s\n", s.cfg.GraphFile)
		fmt.Printf("  Database: %s\n", s.cfg.DatabasePath)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
