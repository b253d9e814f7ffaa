// fg is the feature graph CLI: a versioned map of product features,
// their relationships, and the heuristics linking code and tests back
// to them.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/featuregraph/fg/internal/config"
	"github.com/featuregraph/fg/internal/graph"
	"github.com/featuregraph/fg/internal/heuristics"
	"github.com/featuregraph/fg/internal/mutation"
	"github.com/featuregraph/fg/internal/persist"
	"github.com/featuregraph/fg/internal/storage"
)

const version = "0.1.0"

var workspaceFlag string

var rootCmd = &cobra.Command{
	Use:   "fg",
	Short: "Feature graph for a codebase",
	Long: `fg maintains a versioned graph of product features: what exists,
what depends on what, and which files and tests belong to which feature.

The graph lives in .fg/graph.yaml in your workspace; change history,
proposals and clarifying questions are recorded in .fg/fg.db.

Start with:
  fg init                 # set up .fg/ in the current directory
  fg create auth "Authentication"
  fg connect auth session
  fg show`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", ".", "workspace root directory")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session bundles everything a command needs: config, the loaded graph
// snapshot, the audit store, and the engines wired together.
type session struct {
	workspace string
	cfg       *config.Config
	coord     *persist.Coordinator
	audit     storage.Store
	engine    *mutation.Engine
	heur      *heuristics.Engine
	snapshot  *graph.Store
}

// openSession loads the workspace: config, graph file, audit database.
func openSession(ctx context.Context) (*session, error) {
	workspace := workspaceFlag
	if workspace == "" {
		workspace = "."
	}

	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, err
	}

	coord := persist.NewCoordinator()
	coord.GraphFile = cfg.GraphFile

	dbPath := cfg.DatabasePath
	if dbPath != ":memory:" && !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(workspace, dbPath)
	}
	audit, err := storage.NewStore(ctx, &storage.Config{Path: dbPath})
	if err != nil {
		return nil, err
	}

	snapshot, err := coord.Load(ctx, workspace)
	if err != nil {
		audit.Close()
		return nil, err
	}

	return &session{
		workspace: workspace,
		cfg:       cfg,
		coord:     coord,
		audit:     audit,
		snapshot:  snapshot,
		heur: heuristics.New(heuristics.Config{
			MaxResults: cfg.Heuristics.MaxResults,
			MinScore:   cfg.Heuristics.MinScore,
		}),
		engine: mutation.New(mutation.Options{
			Workspace: workspace,
			Persister: coord,
			Audit:     audit,
			Actor:     cfg.Actor,
		}),
	}, nil
}

// Close releases the session's resources.
func (s *session) Close() {
	_ = s.audit.Close()
}

// apply runs mutation requests and adopts the successor snapshot.
func (s *session) apply(ctx context.Context, reqs ...mutation.Request) ([]mutation.Result, error) {
	next, results, err := s.engine.Apply(ctx, s.snapshot, reqs...)
	s.snapshot = next
	return results, err
}

// fatal prints an error and exits. Command Run functions use it for
// uniform error reporting.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// reportResult prints one mutation result: a green check when the graph
// changed, a neutral dot for soft no-ops, and exits on failure.
func reportResult(res mutation.Result) {
	if res.Err != nil {
		fatal(res.Err)
	}
	if res.Applied {
		fmt.Printf("%s %s\n", color.GreenString("✓"), res.Summary)
	} else {
		fmt.Printf("%s %s\n", color.YellowString("·"), res.Summary)
	}
}
