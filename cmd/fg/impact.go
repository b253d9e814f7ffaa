package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/featuregraph/fg/internal/mutation"
)

var (
	impactChangeType string
	impactTarget     string
)

var impactCmd = &cobra.Command{
	Use:   "impact <feature-id>",
	Short: "Analyze the impact of changing a feature",
	Long: `Report which features are directly affected by a prospective change,
with a severity classification. The graph is not modified.

Examples:
  fg impact auth
  fg impact auth --type remove
  fg impact checkout --type connect --target payment`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			fatal(err)
		}
		defer s.Close()

		results, err := s.apply(ctx, mutation.Request{
			Type:            mutation.RequestAnalyzeImpact,
			FeatureID:       args[0],
			ChangeType:      impactChangeType,
			TargetFeatureID: impactTarget,
		})
		if err != nil {
			fatal(err)
		}
		res := results[0]
		if res.Err != nil {
			fatal(res.Err)
		}

		report := res.Impact
		fmt.Printf("\n%s\n", report.Description)
		fmt.Printf("Severity: %s\n", renderSeverity(string(report.Severity)))
		if len(report.AffectedFeatures) > 0 {
			fmt.Printf("Affected: %s\n", strings.Join(report.AffectedFeatures, ", "))
		}
		fmt.Println()
	},
}

func renderSeverity(s string) string {
	switch s {
	case "high":
		return color.RedString(s)
	case "medium":
		return color.YellowString(s)
	case "low":
		return color.GreenString(s)
	default:
		return s
	}
}

var (
	askContext  string
	askOptions  []string
	askFeatures []string
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Record a clarifying question",
	Long: `Record a clarifying question instead of guessing at an ambiguous
change. Questions are stored pending; answers arrive out of band.

Example:
  fg ask "Should OAuth be part of auth or its own feature?" --feature auth`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMutation(mutation.Request{
			Type:              mutation.RequestAskQuestion,
			Question:          strings.Join(args, " "),
			QuestionContext:   askContext,
			Options:           askOptions,
			RelatedFeatureIDs: askFeatures,
		})
	},
}

func init() {
	impactCmd.Flags().StringVarP(&impactChangeType, "type", "t", "update", "change type (update, remove, connect, disconnect)")
	impactCmd.Flags().StringVar(&impactTarget, "target", "", "target feature id for connect/disconnect changes")
	rootCmd.AddCommand(impactCmd)

	askCmd.Flags().StringVar(&askContext, "context", "", "context for the question")
	askCmd.Flags().StringSliceVar(&askOptions, "option", nil, "candidate answer (repeatable)")
	askCmd.Flags().StringSliceVar(&askFeatures, "feature", nil, "related feature id (repeatable)")
	rootCmd.AddCommand(askCmd)
}
