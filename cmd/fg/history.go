package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/featuregraph/fg/internal/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the change history",
	Long: `Show the append-only change history, newest first.

Examples:
  fg history
  fg history -n 50`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			fatal(err)
		}
		defer s.Close()

		entries, err := s.audit.ListHistory(ctx, historyLimit)
		if err != nil {
			fatal(err)
		}
		if len(entries) == 0 {
			fmt.Println("No history yet.")
			return
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan("Change History"))
		for _, e := range entries {
			fmt.Printf("  %s  %-28s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Summary)
		}
		fmt.Println()
	},
}

var questionsStatus string

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List clarifying questions",
	Long: `List recorded clarifying questions, newest first.

Examples:
  fg questions
  fg questions --status pending`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			fatal(err)
		}
		defer s.Close()

		questions, err := s.audit.ListQuestions(ctx, types.QuestionStatus(questionsStatus))
		if err != nil {
			fatal(err)
		}
		if len(questions) == 0 {
			fmt.Println("No questions.")
			return
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan("Clarifying Questions"))
		for _, q := range questions {
			fmt.Printf("  %-12s %-10s %s\n", q.ID, q.Status, q.Question)
			for _, opt := range q.Options {
				fmt.Printf("    - %s\n", opt)
			}
		}
		fmt.Println()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum entries to show")
	rootCmd.AddCommand(historyCmd)

	questionsCmd.Flags().StringVar(&questionsStatus, "status", "", "filter by status (pending, answered)")
	rootCmd.AddCommand(questionsCmd)
}
