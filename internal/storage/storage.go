// Package storage persists the audit side of the feature graph: change
// history entries, proposals, and clarifying questions. The graph file
// itself is owned by the persist package; this store only records what
// happened to it.
package storage

import (
	"context"

	"github.com/featuregraph/fg/internal/storage/sqlite"
	"github.com/featuregraph/fg/internal/types"
)

// Store defines the interface for audit storage backends.
type Store interface {
	// History is append-only: entries are never updated or removed.
	AppendHistory(ctx context.Context, entry *types.HistoryEntry) error
	ListHistory(ctx context.Context, limit int) ([]*types.HistoryEntry, error)

	// Proposals
	SaveProposal(ctx context.Context, p *types.Proposal) error
	GetProposal(ctx context.Context, id string) (*types.Proposal, error)
	// FindProposalByFeature returns the most relevant proposal for a
	// feature id: the newest unresolved one if any, otherwise the
	// newest overall. Returns a NotFoundError when none exists.
	FindProposalByFeature(ctx context.Context, featureID string) (*types.Proposal, error)
	// ListProposals returns proposals, newest first, optionally
	// filtered by status ("" matches all).
	ListProposals(ctx context.Context, status types.ProposalStatus) ([]*types.Proposal, error)

	// Clarifying questions
	SaveQuestion(ctx context.Context, q *types.ClarifyingQuestion) error
	ListQuestions(ctx context.Context, status types.QuestionStatus) ([]*types.ClarifyingQuestion, error)

	// Lifecycle
	Close() error
}

// Config holds audit database configuration.
type Config struct {
	// Path is the SQLite database file path.
	// Default: ".fg/fg.db"
	// Special value ":memory:" creates an in-memory database.
	Path string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Path: ".fg/fg.db",
	}
}

// NewStore creates a new SQLite audit storage backend.
func NewStore(ctx context.Context, cfg *Config) (Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = ".fg/fg.db"
	}
	return sqlite.New(cfg.Path)
}
