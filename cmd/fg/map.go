package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/featuregraph/fg/internal/heuristics"
	"github.com/featuregraph/fg/internal/types"
)

var (
	mapAsTest    bool
	mapHintsFile string
)

var mapCmd = &cobra.Command{
	Use:   "map <path>",
	Short: "Map an artifact or test path to features",
	Long: `Rank the features most likely responsible for a file path or
artifact name. Test paths are detected automatically; --test forces
test-style matching. A hints file supplies plan metadata keyed by
feature id:

  auth:
    keywords: [login, oauth]
    artifacts: [src/auth/]
    tests: [tests/auth_test.go]

Examples:
  fg map src/auth/login.ts
  fg map src/auth/login.test.ts
  fg map src/pay/stripe.go --hints plan-hints.yaml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			fatal(err)
		}
		defer s.Close()

		hctx, err := loadHints(mapHintsFile)
		if err != nil {
			fatal(err)
		}

		query := args[0]
		var matches []heuristics.Match
		if mapAsTest || heuristics.IsTestLike(query) {
			matches = s.heur.FeaturesForTest(s.snapshot, query, hctx)
		} else {
			matches = s.heur.FeaturesForArtifact(s.snapshot, query, hctx)
		}
		printMatches(query, matches)
	},
}

var testsCmd = &cobra.Command{
	Use:   "tests <feature-id>",
	Short: "List tests associated with a feature",
	Long: `List the union of a feature's declared test-like artifacts, its
plan-hint tests, and test paths found in associated task plans.

Example:
  fg tests auth --hints plan-hints.yaml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			fatal(err)
		}
		defer s.Close()

		id := args[0]
		if !s.snapshot.HasFeature(id) {
			fatal(&types.NotFoundError{Kind: "feature", ID: id})
		}
		hctx, err := loadHints(mapHintsFile)
		if err != nil {
			fatal(err)
		}

		tests := s.heur.TestsForFeature(s.snapshot, id, hctx)
		if len(tests) == 0 {
			fmt.Printf("No tests associated with %q\n", id)
			return
		}
		fmt.Printf("\nTests for %q:\n\n", id)
		for _, t := range tests {
			fmt.Printf("  %s\n", t)
		}
		fmt.Println()
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <path...>",
	Short: "Map a set of changed paths to impacted features",
	Long: `Aggregate artifact and test matches across a set of changed file
paths, answering "which features does this diff touch."

Example:
  git diff --name-only main | xargs fg diff`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			fatal(err)
		}
		defer s.Close()

		hctx, err := loadHints(mapHintsFile)
		if err != nil {
			fatal(err)
		}

		matches := s.heur.ImpactedFeaturesByCodeChange(s.snapshot, args, hctx)
		printMatches(fmt.Sprintf("%d changed path(s)", len(args)), matches)
	},
}

// loadHints reads a YAML hints file into a heuristics context. An empty
// path yields a nil context.
func loadHints(path string) (*heuristics.Context, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hints file %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hints file %s: %w", path, err)
	}
	return &heuristics.Context{Hints: heuristics.NormalizeHintSet(raw)}, nil
}

func printMatches(query string, matches []heuristics.Match) {
	if len(matches) == 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%s No features match %s\n", yellow("✨"), query)
		return
	}

	fmt.Printf("\nFeatures matching %s:\n\n", query)
	for _, m := range matches {
		marker := " "
		if m.DirectPlanMatch {
			marker = color.GreenString("*")
		}
		fmt.Printf("  %s %-24s %6.1f  %s\n", marker, m.Feature.ID, m.Score, m.Feature.Name)
	}
	fmt.Println()
}

func init() {
	mapCmd.Flags().BoolVar(&mapAsTest, "test", false, "force test-style matching")
	mapCmd.Flags().StringVar(&mapHintsFile, "hints", "", "YAML file of plan hints keyed by feature id")
	rootCmd.AddCommand(mapCmd)

	testsCmd.Flags().StringVar(&mapHintsFile, "hints", "", "YAML file of plan hints keyed by feature id")
	rootCmd.AddCommand(testsCmd)

	diffCmd.Flags().StringVar(&mapHintsFile, "hints", "", "YAML file of plan hints keyed by feature id")
	rootCmd.AddCommand(diffCmd)
}
