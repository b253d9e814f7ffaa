package storage

import (
	"context"
	"sync"

	"github.com/featuregraph/fg/internal/types"
)

// MemoryStore is an in-memory Store implementation. It backs tests and
// ephemeral sessions that have no workspace database.
type MemoryStore struct {
	mu        sync.Mutex
	history   []*types.HistoryEntry
	proposals []*types.Proposal
	questions []*types.ClarifyingQuestion
}

// NewMemoryStore creates an empty in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AppendHistory appends an audit entry.
func (m *MemoryStore) AppendHistory(_ context.Context, entry *types.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *entry
	m.history = append(m.history, &copied)
	return nil
}

// ListHistory returns history entries, newest first.
func (m *MemoryStore) ListHistory(_ context.Context, limit int) ([]*types.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.HistoryEntry, 0, len(m.history))
	for i := len(m.history) - 1; i >= 0; i-- {
		copied := *m.history[i]
		out = append(out, &copied)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// SaveProposal inserts or replaces a proposal by id.
func (m *MemoryStore) SaveProposal(_ context.Context, p *types.Proposal) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *p
	for i, existing := range m.proposals {
		if existing.ID == p.ID {
			m.proposals[i] = &copied
			return nil
		}
	}
	m.proposals = append(m.proposals, &copied)
	return nil
}

// GetProposal returns the proposal with the given id.
func (m *MemoryStore) GetProposal(_ context.Context, id string) (*types.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.proposals {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, &types.NotFoundError{Kind: "proposal", ID: id}
}

// FindProposalByFeature returns the newest unresolved proposal for the
// feature, falling back to the newest resolved one.
func (m *MemoryStore) FindProposalByFeature(_ context.Context, featureID string) (*types.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest, newestUnresolved *types.Proposal
	for _, p := range m.proposals {
		if p.FeatureID != featureID {
			continue
		}
		if newest == nil || p.CreatedAt.After(newest.CreatedAt) {
			newest = p
		}
		if !p.Status.Resolved() && (newestUnresolved == nil || p.CreatedAt.After(newestUnresolved.CreatedAt)) {
			newestUnresolved = p
		}
	}
	pick := newestUnresolved
	if pick == nil {
		pick = newest
	}
	if pick == nil {
		return nil, &types.NotFoundError{Kind: "proposal", ID: featureID}
	}
	copied := *pick
	return &copied, nil
}

// ListProposals returns proposals, newest first, optionally filtered.
func (m *MemoryStore) ListProposals(_ context.Context, status types.ProposalStatus) ([]*types.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Proposal, 0, len(m.proposals))
	for i := len(m.proposals) - 1; i >= 0; i-- {
		p := m.proposals[i]
		if status != "" && p.Status != status {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

// SaveQuestion records a clarifying question.
func (m *MemoryStore) SaveQuestion(_ context.Context, q *types.ClarifyingQuestion) error {
	if err := q.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *q
	for i, existing := range m.questions {
		if existing.ID == q.ID {
			m.questions[i] = &copied
			return nil
		}
	}
	m.questions = append(m.questions, &copied)
	return nil
}

// ListQuestions returns questions, newest first, optionally filtered.
func (m *MemoryStore) ListQuestions(_ context.Context, status types.QuestionStatus) ([]*types.ClarifyingQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.ClarifyingQuestion, 0, len(m.questions))
	for i := len(m.questions) - 1; i >= 0; i-- {
		q := m.questions[i]
		if status != "" && q.Status != status {
			continue
		}
		copied := *q
		out = append(out, &copied)
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
