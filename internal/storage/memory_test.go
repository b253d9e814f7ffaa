package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featuregraph/fg/internal/types"
)

func TestMemoryStoreImplementsStore(t *testing.T) {
	var _ Store = NewMemoryStore()
}

func TestMemoryHistoryNewestFirst(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	for _, action := range []string{"first", "second", "third"} {
		require.NoError(t, m.AppendHistory(ctx, &types.HistoryEntry{Action: action}))
	}

	entries, err := m.ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Action)

	limited, err := m.ListHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "third", limited[0].Action)
}

func TestMemoryProposalLifecycle(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	p := &types.Proposal{
		ID: "prop-1", Type: types.ProposalUpdate, FeatureID: "auth",
		Status: types.ProposalProposed, CreatedAt: base, UpdatedAt: base,
	}
	require.NoError(t, m.SaveProposal(ctx, p))

	// Returned copies are isolated from the store.
	got, err := m.GetProposal(ctx, "prop-1")
	require.NoError(t, err)
	got.Status = types.ProposalRejected
	again, err := m.GetProposal(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, types.ProposalProposed, again.Status)

	// Upsert by id.
	p.Status = types.ProposalApproved
	require.NoError(t, m.SaveProposal(ctx, p))
	final, err := m.GetProposal(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, types.ProposalApproved, final.Status)

	_, err = m.GetProposal(ctx, "ghost")
	assert.True(t, types.IsNotFound(err))
}

func TestMemoryFindProposalByFeature(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	save := func(id string, status types.ProposalStatus, at time.Time) {
		require.NoError(t, m.SaveProposal(ctx, &types.Proposal{
			ID: id, Type: types.ProposalUpdate, FeatureID: "auth",
			Status: status, CreatedAt: at, UpdatedAt: at,
		}))
	}
	save("older-open", types.ProposalProposed, base)
	save("newer-resolved", types.ProposalApproved, base.Add(time.Hour))

	got, err := m.FindProposalByFeature(ctx, "auth")
	require.NoError(t, err)
	assert.Equal(t, "older-open", got.ID, "unresolved beats newer resolved")

	_, err = m.FindProposalByFeature(ctx, "ghost")
	assert.True(t, types.IsNotFound(err))
}

func TestMemoryQuestions(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.SaveQuestion(ctx, &types.ClarifyingQuestion{
		ID: "q-1", Question: "first?", Status: types.QuestionPending,
	}))
	require.NoError(t, m.SaveQuestion(ctx, &types.ClarifyingQuestion{
		ID: "q-2", Question: "second?", Status: types.QuestionAnswered,
	}))

	pending, err := m.ListQuestions(ctx, types.QuestionPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "q-1", pending[0].ID)

	all, err := m.ListQuestions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
