package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/featuregraph/fg/internal/graph"
	"github.com/featuregraph/fg/internal/types"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [feature-id]",
	Short: "Show the feature graph, or one feature in detail",
	Long: `Show all features in the graph, or one feature in detail.

Examples:
  fg show                # List all features
  fg show auth           # Show the auth feature with its connections
  fg show --json         # Machine-readable output`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			fatal(err)
		}
		defer s.Close()

		if len(args) == 1 {
			showOne(s, args[0])
			return
		}
		showAll(s)
	},
}

func showAll(s *session) {
	if showJSON {
		data, err := json.MarshalIndent(s.snapshot.File(), "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(data))
		return
	}

	features := s.snapshot.Features()
	if len(features) == 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%s No features yet. Use 'fg create <id> <name>' to add one.\n", yellow("✨"))
		return
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s (version %d, %d feature(s), %d edge(s))\n\n",
		cyan("Feature Graph"), s.snapshot.Version(), s.snapshot.Len(), len(s.snapshot.Edges()))
	for _, f := range features {
		fmt.Printf("  %-24s %-10s %s\n", f.ID, renderStatus(f.Status), f.Name)
	}
	fmt.Println()
}

func showOne(s *session, id string) {
	f, ok := s.snapshot.Feature(id)
	if !ok {
		fatal(&types.NotFoundError{Kind: "feature", ID: id})
	}

	if showJSON {
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(data))
		return
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s  %s\n", cyan(f.ID), renderStatus(f.Status))
	if f.Name != "" {
		fmt.Printf("  Name:        %s\n", f.Name)
	}
	if f.Group != "" {
		fmt.Printf("  Group:       %s\n", f.Group)
	}
	if f.Description != "" {
		fmt.Printf("  Description: %s\n", f.Description)
	}
	if f.Artifacts != nil {
		for _, ref := range f.Artifacts.Refs() {
			fmt.Printf("  Artifact:    %s\n", ref.Identity())
		}
	}
	if deps := s.snapshot.NeighborIDs(id, graph.DirectionUpstream); len(deps) > 0 {
		fmt.Printf("  Depends on:  %s\n", strings.Join(deps, ", "))
	}
	if dependents := s.snapshot.NeighborIDs(id, graph.DirectionDownstream); len(dependents) > 0 {
		fmt.Printf("  Needed by:   %s\n", strings.Join(dependents, ", "))
	}
	fmt.Println()
}

func renderStatus(s types.FeatureStatus) string {
	switch s {
	case types.StatusActive:
		return color.GreenString(string(s))
	case types.StatusProposed:
		return color.YellowString(string(s))
	case types.StatusRejected:
		return color.RedString(string(s))
	default:
		return string(s)
	}
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(showCmd)
}
