package repl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/featuregraph/fg/internal/graph"
	"github.com/featuregraph/fg/internal/mutation"
	"github.com/featuregraph/fg/internal/types"
)

// cmdStatus shows a graph overview.
func (r *REPL) cmdStatus(args []string) error {
	counts := make(map[types.FeatureStatus]int)
	for _, f := range r.snapshot.Features() {
		counts[f.Status]++
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Printf("\n%s\n\n", cyan("Graph Status"))
	fmt.Printf("  %s  %d feature(s)\n", green("✓ Active"), counts[types.StatusActive])
	fmt.Printf("  %s  %d feature(s)\n", yellow("⚡ Proposed"), counts[types.StatusProposed])
	fmt.Printf("  %s  %d feature(s)\n", yellow("· Inactive"), counts[types.StatusInactive])
	fmt.Printf("  %s  %d feature(s)\n", red("⊗ Rejected"), counts[types.StatusRejected])
	fmt.Printf("\n  %d edge(s)\n\n", len(r.snapshot.Edges()))
	return nil
}

// cmdShow lists all features, or one feature in detail.
func (r *REPL) cmdShow(args []string) error {
	if len(args) > 0 {
		return r.showFeature(args[0])
	}

	features := r.snapshot.Features()
	if len(features) == 0 {
		fmt.Println("No features yet. Use 'create <id> <name...>' to add one.")
		return nil
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n\n", cyan("Features"))
	for _, f := range features {
		fmt.Printf("  %-24s %-10s %s\n", f.ID, statusColor(f.Status), f.Name)
	}
	fmt.Println()
	return nil
}

func (r *REPL) showFeature(id string) error {
	f, ok := r.snapshot.Feature(id)
	if !ok {
		return &types.NotFoundError{Kind: "feature", ID: id}
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s %s\n", cyan(f.ID), statusColor(f.Status))
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
	if deps := r.snapshot.NeighborIDs(id, graph.DirectionUpstream); len(deps) > 0 {
		fmt.Printf("  Depends on:  %s\n", strings.Join(deps, ", "))
	}
	if dependents := r.snapshot.NeighborIDs(id, graph.DirectionDownstream); len(dependents) > 0 {
		fmt.Printf("  Needed by:   %s\n", strings.Join(dependents, ", "))
	}
	fmt.Println()
	return nil
}

// cmdCreate creates a feature: create <id> <name...>.
func (r *REPL) cmdCreate(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: create <id> <name...>")
	}
	return r.applyAndReport(mutation.Request{
		Type:      mutation.RequestCreateFeature,
		FeatureID: args[0],
		Name:      strings.Join(args[1:], " "),
	})
}

// cmdConnect connects two features: connect <src> <dst> [type].
func (r *REPL) cmdConnect(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: connect <source-id> <target-id> [type]")
	}
	req := mutation.Request{
		Type:            mutation.RequestConnectFeatures,
		SourceFeatureID: args[0],
		TargetFeatureID: args[1],
	}
	if len(args) > 2 {
		req.ConnectionType = types.EdgeType(args[2])
	}
	return r.applyAndReport(req)
}

// cmdDisconnect removes the connection between two features.
func (r *REPL) cmdDisconnect(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: disconnect <source-id> <target-id>")
	}
	return r.applyAndReport(mutation.Request{
		Type:            mutation.RequestDisconnectFeatures,
		SourceFeatureID: args[0],
		TargetFeatureID: args[1],
	})
}

// cmdReady marks features ready for development.
func (r *REPL) cmdReady(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: ready <feature-id...>")
	}
	return r.applyAndReport(mutation.Request{
		Type:       mutation.RequestMarkReady,
		FeatureIDs: args,
	})
}

// cmdImpact analyzes the impact of changing a feature.
func (r *REPL) cmdImpact(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: impact <feature-id> [change-type]")
	}
	req := mutation.Request{
		Type:      mutation.RequestAnalyzeImpact,
		FeatureID: args[0],
	}
	if len(args) > 1 {
		req.ChangeType = args[1]
	}

	results, err := r.apply(req)
	if err != nil {
		return err
	}
	res := results[0]
	if res.Err != nil {
		return res.Err
	}

	report := res.Impact
	fmt.Printf("\n%s\n", report.Description)
	fmt.Printf("Severity: %s\n\n", severityColor(string(report.Severity)))
	return nil
}

// cmdMap maps an artifact or test path to features.
func (r *REPL) cmdMap(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: map <path>")
	}
	query := args[0]

	matches := r.heur.FeaturesForArtifact(r.snapshot, query, nil)
	if len(matches) == 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%s No features match %q\n", yellow("✨"), query)
		return nil
	}

	fmt.Printf("\nFeatures matching %q:\n\n", query)
	for _, m := range matches {
		marker := " "
		if m.DirectPlanMatch {
			marker = "*"
		}
		fmt.Printf("  %s %-24s %6.1f  %s\n", marker, m.Feature.ID, m.Score, m.Feature.Name)
	}
	fmt.Println()
	return nil
}

// cmdTests lists tests associated with a feature.
func (r *REPL) cmdTests(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tests <feature-id>")
	}
	id := args[0]
	if !r.snapshot.HasFeature(id) {
		return &types.NotFoundError{Kind: "feature", ID: id}
	}

	tests := r.heur.TestsForFeature(r.snapshot, id, nil)
	if len(tests) == 0 {
		fmt.Printf("No tests associated with %q\n", id)
		return nil
	}
	fmt.Printf("\nTests for %q:\n\n", id)
	for _, t := range tests {
		fmt.Printf("  %s\n", t)
	}
	fmt.Println()
	return nil
}

// cmdHistory shows recent change history.
func (r *REPL) cmdHistory(args []string) error {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("usage: history [n]")
		}
		limit = n
	}

	entries, err := r.audit.ListHistory(r.ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No history yet.")
		return nil
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n\n", cyan("Recent Changes"))
	for _, e := range entries {
		fmt.Printf("  %s  %-28s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Summary)
	}
	fmt.Println()
	return nil
}

// applyAndReport runs one mutation request and prints the outcome.
func (r *REPL) applyAndReport(req mutation.Request) error {
	results, err := r.apply(req)
	if err != nil {
		return err
	}
	res := results[0]
	if res.Err != nil {
		return res.Err
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	if res.Applied {
		fmt.Printf("%s %s\n", green("✓"), res.Summary)
	} else {
		fmt.Printf("%s %s\n", yellow("·"), res.Summary)
	}
	return nil
}

func statusColor(s types.FeatureStatus) string {
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

func severityColor(s string) string {
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
