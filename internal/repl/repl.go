// Package repl implements the interactive shell for working with a
// workspace's feature graph: inspecting features, applying mutations,
// and running impact or mapping queries without re-loading the graph
// per command.
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/featuregraph/fg/internal/graph"
	"github.com/featuregraph/fg/internal/heuristics"
	"github.com/featuregraph/fg/internal/mutation"
	"github.com/featuregraph/fg/internal/storage"
)

// REPL represents the interactive shell.
type REPL struct {
	snapshot *graph.Store
	engine   *mutation.Engine
	heur     *heuristics.Engine
	audit    storage.Store
	rl       *readline.Instance
	ctx      context.Context
	actor    string
	commands map[string]CommandHandler
}

// CommandHandler handles a specific command.
type CommandHandler func(args []string) error

// Config holds REPL configuration.
type Config struct {
	Snapshot   *graph.Store
	Engine     *mutation.Engine
	Heuristics *heuristics.Engine
	Audit      storage.Store
	Actor      string
}

// New creates a new REPL instance.
func New(cfg *Config) (*REPL, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("mutation engine is required")
	}
	if cfg.Audit == nil {
		return nil, fmt.Errorf("audit store is required")
	}

	snapshot := cfg.Snapshot
	if snapshot == nil {
		snapshot = graph.Empty()
	}
	heur := cfg.Heuristics
	if heur == nil {
		heur = heuristics.New(heuristics.DefaultConfig())
	}
	actor := cfg.Actor
	if actor == "" {
		actor = "user"
	}

	r := &REPL{
		snapshot: snapshot,
		engine:   cfg.Engine,
		heur:     heur,
		audit:    cfg.Audit,
		actor:    actor,
		commands: make(map[string]CommandHandler),
	}
	r.registerCommands()
	return r, nil
}

// Run starts the REPL loop.
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("fg> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
	}
}

// processInput processes a single line of input.
func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := parts[0]
	args := parts[1:]

	if handler, ok := r.commands[command]; ok {
		return handler(args)
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("%s Unknown command %q. Use 'help' for available commands.\n", yellow("Note:"), command)
	return nil
}

// apply runs mutation requests and adopts the successor snapshot.
func (r *REPL) apply(reqs ...mutation.Request) ([]mutation.Result, error) {
	next, results, err := r.engine.Apply(r.ctx, r.snapshot, reqs...)
	r.snapshot = next
	return results, err
}

// registerCommands registers all built-in commands.
func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
	r.commands["status"] = r.cmdStatus
	r.commands["show"] = r.cmdShow
	r.commands["create"] = r.cmdCreate
	r.commands["connect"] = r.cmdConnect
	r.commands["disconnect"] = r.cmdDisconnect
	r.commands["ready"] = r.cmdReady
	r.commands["impact"] = r.cmdImpact
	r.commands["map"] = r.cmdMap
	r.commands["tests"] = r.cmdTests
	r.commands["history"] = r.cmdHistory
}

// printWelcome prints the welcome message.
func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("fg - feature graph shell"))
	fmt.Printf("%d feature(s) loaded\n", r.snapshot.Len())
	fmt.Println()
	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()
}

// cmdHelp shows help information.
func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"status", "Show graph overview (features by status)"},
		{"show [id]", "Show all features, or one feature in detail"},
		{"create <id> <name...>", "Create a feature in status proposed"},
		{"connect <src> <dst> [type]", "Connect two features (default depends_on)"},
		{"disconnect <src> <dst>", "Remove the connection between two features"},
		{"ready <id...>", "Mark features ready for development"},
		{"impact <id> [change-type]", "Analyze the impact of changing a feature"},
		{"map <path>", "Map an artifact or test path to features"},
		{"tests <id>", "List tests associated with a feature"},
		{"history [n]", "Show recent change history"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the shell"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %-28s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Println()
	return nil
}

// cmdExit exits the REPL.
func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s Goodbye!\n", green("✓"))
	r.rl.Close()
	return io.EOF
}
