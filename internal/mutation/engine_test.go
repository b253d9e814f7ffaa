package mutation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featuregraph/fg/internal/graph"
	"github.com/featuregraph/fg/internal/storage"
	"github.com/featuregraph/fg/internal/types"
)

// recordingPersister captures persisted files; fail makes Persist error.
type recordingPersister struct {
	files []*types.GraphFile
	fail  error
}

func (p *recordingPersister) Persist(_ context.Context, file *types.GraphFile, _ string) error {
	if p.fail != nil {
		return p.fail
	}
	p.files = append(p.files, file)
	return nil
}

func newTestEngine(p Persister) (*Engine, *storage.MemoryStore) {
	audit := storage.NewMemoryStore()
	seq := 0
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := New(Options{
		Workspace: "/tmp/ws",
		Persister: p,
		Audit:     audit,
		Actor:     "tester",
		NewID: func() string {
			seq++
			return fmt.Sprintf("%04d", seq)
		},
		Clock: func() time.Time {
			seq++
			return base.Add(time.Duration(seq) * time.Second)
		},
	})
	return e, audit
}

func seedStore(t *testing.T) *graph.Store {
	t.Helper()
	st, err := graph.New(&types.GraphFile{
		Version: 1,
		Nodes: []types.FeatureNode{
			{ID: "auth", Name: "Authentication", Status: types.StatusActive},
			{ID: "session", Name: "Sessions", Status: types.StatusActive},
			{ID: "draft", Name: "Draft feature", Status: types.StatusProposed},
			{ID: "dead", Name: "Rejected feature", Status: types.StatusRejected},
		},
		Edges: []types.FeatureEdge{
			{Source: "auth", Target: "session", Type: types.EdgeDependsOn},
		},
	})
	require.NoError(t, err)
	return st
}

func TestCreateFeature(t *testing.T) {
	p := &recordingPersister{}
	e, audit := newTestEngine(p)
	ctx := context.Background()

	st, results, err := e.Apply(ctx, seedStore(t), Request{
		Type:      RequestCreateFeature,
		FeatureID: "billing",
		Name:      "Billing",
		Group:     "payments",
		Rationale: "quarter goal",
	})
	require.NoError(t, err)
	res := results[0]
	require.NoError(t, res.Err)
	assert.True(t, res.Applied)

	f, ok := st.Feature("billing")
	require.True(t, ok)
	assert.Equal(t, types.StatusProposed, f.Status)
	assert.Equal(t, "payments", f.Group)

	// The mutation was persisted and audited.
	require.Len(t, p.files, 1)
	require.NotNil(t, res.Proposal)
	assert.Equal(t, types.ProposalApproved, res.Proposal.Status)
	assert.Equal(t, "quarter goal", res.Proposal.Rationale)

	history, err := audit.ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(RequestCreateFeature), history[0].Action)
	assert.Equal(t, res.Proposal.ID, history[0].ProposalID)
}

func TestCreateDuplicateConflicts(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	st := seedStore(t)

	next, results, err := e.Apply(context.Background(), st, Request{
		Type: RequestCreateFeature, FeatureID: "auth", Name: "Auth again",
	})
	require.NoError(t, err)
	require.Error(t, results[0].Err)
	assert.True(t, types.IsConflict(results[0].Err))
	assert.Same(t, st, next, "failed request leaves the snapshot untouched")
}

func TestCopyOnWrite(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	before := seedStore(t)

	after, results, err := e.Apply(context.Background(), before, Request{
		Type: RequestCreateFeature, FeatureID: "billing", Name: "Billing",
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	assert.False(t, before.HasFeature("billing"), "prior snapshot must not change")
	assert.True(t, after.HasFeature("billing"))
	assert.NotSame(t, before, after)
}

func TestUpdateFeature(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	ctx := context.Background()

	st, results, err := e.Apply(ctx, seedStore(t), Request{
		Type:        RequestUpdateFeature,
		FeatureID:   "auth",
		Description: "Login, sessions, password reset",
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	f, _ := st.Feature("auth")
	assert.Equal(t, "Login, sessions, password reset", f.Description)
	assert.Equal(t, "Authentication", f.Name, "unset fields stay put")
}

func TestUpdateUnknownFeature(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	_, results, err := e.Apply(context.Background(), seedStore(t), Request{
		Type: RequestUpdateFeature, FeatureID: "ghost", Name: "x",
	})
	require.NoError(t, err)
	assert.True(t, types.IsNotFound(results[0].Err))
}

func TestUpdateNoEffectiveChange(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	_, results, err := e.Apply(context.Background(), seedStore(t), Request{
		Type: RequestUpdateFeature, FeatureID: "auth", Name: "Authentication",
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.False(t, results[0].Applied)
	assert.Contains(t, results[0].Summary, "up to date")
}

func TestConnectFeatures(t *testing.T) {
	p := &recordingPersister{}
	e, _ := newTestEngine(p)

	st, results, err := e.Apply(context.Background(), seedStore(t), Request{
		Type:            RequestConnectFeatures,
		SourceFeatureID: "session",
		TargetFeatureID: "draft",
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	edge, ok := st.EdgeBetween("session", "draft")
	require.True(t, ok)
	assert.Equal(t, types.EdgeDependsOn, edge.Type, "edge type defaults to depends_on")
}

func TestConnectDuplicateIsSoftNoOp(t *testing.T) {
	e, audit := newTestEngine(&recordingPersister{})
	ctx := context.Background()

	// Same pair, different type: still a duplicate.
	st, results, err := e.Apply(ctx, seedStore(t), Request{
		Type:            RequestConnectFeatures,
		SourceFeatureID: "auth",
		TargetFeatureID: "session",
		ConnectionType:  types.EdgeRelatedTo,
	})
	require.NoError(t, err)
	res := results[0]
	require.NoError(t, res.Err)
	assert.False(t, res.Applied)
	assert.Contains(t, res.Summary, "already connected")
	assert.Len(t, st.Edges(), 1)

	// Idempotence: reporting is still audited, the graph is not.
	history, err := audit.ListHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestConnectSelfLoopRejected(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	_, results, err := e.Apply(context.Background(), seedStore(t), Request{
		Type:            RequestConnectFeatures,
		SourceFeatureID: "auth",
		TargetFeatureID: "auth",
	})
	require.NoError(t, err)
	assert.True(t, types.IsValidation(results[0].Err))
}

func TestConnectUnknownEndpoint(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	_, results, err := e.Apply(context.Background(), seedStore(t), Request{
		Type:            RequestConnectFeatures,
		SourceFeatureID: "auth",
		TargetFeatureID: "ghost",
	})
	require.NoError(t, err)
	assert.True(t, types.IsNotFound(results[0].Err))
}

func TestDisconnectFeatures(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	st, results, err := e.Apply(context.Background(), seedStore(t), Request{
		Type:            RequestDisconnectFeatures,
		SourceFeatureID: "auth",
		TargetFeatureID: "session",
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Applied)
	assert.Empty(t, st.Edges())
}

func TestDisconnectMissingIsSoftNoOp(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	st, results, err := e.Apply(context.Background(), seedStore(t), Request{
		Type:            RequestDisconnectFeatures,
		SourceFeatureID: "session",
		TargetFeatureID: "auth", // reverse direction: not connected
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.False(t, results[0].Applied)
	assert.Contains(t, results[0].Summary, "no connection found")
	assert.Len(t, st.Edges(), 1)
}

func TestMarkReadyPartialSuccess(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	st, results, err := e.Apply(context.Background(), seedStore(t), Request{
		Type:       RequestMarkReady,
		FeatureIDs: []string{"draft", "ghost", "dead", "auth"},
	})
	require.NoError(t, err)
	res := results[0]
	require.NoError(t, res.Err)

	// draft transitions, auth is already active, ghost is unknown and
	// dead is terminal.
	assert.Equal(t, []string{"auth", "draft"}, res.ReadyIDs)
	assert.Equal(t, []string{"dead", "ghost"}, res.InvalidIDs)
	assert.True(t, res.Applied)

	f, _ := st.Feature("draft")
	assert.Equal(t, types.StatusActive, f.Status)
	f, _ = st.Feature("dead")
	assert.Equal(t, types.StatusRejected, f.Status)
}

func TestMarkReadyAllInvalid(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	st := seedStore(t)
	next, results, err := e.Apply(context.Background(), st, Request{
		Type:       RequestMarkReady,
		FeatureIDs: []string{"ghost", "dead"},
	})
	require.NoError(t, err)
	res := results[0]
	require.NoError(t, res.Err)
	assert.False(t, res.Applied)
	assert.Empty(t, res.ReadyIDs)
	assert.Equal(t, []string{"dead", "ghost"}, res.InvalidIDs)
	assert.Same(t, st, next)
}

func TestProposeAndApprove(t *testing.T) {
	e, audit := newTestEngine(&recordingPersister{})
	ctx := context.Background()
	st := seedStore(t)

	st, results, err := e.Apply(ctx, st, Request{
		Type:      RequestProposeChange,
		FeatureID: "draft",
		Summary:   "Promote draft to active scope",
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	prop := results[0].Proposal
	require.NotNil(t, prop)
	assert.Equal(t, types.ProposalProposed, prop.Status)
	assert.False(t, results[0].Applied, "proposing an update changes nothing yet")

	// Approve by feature id: the stored proposal is found and resolved,
	// and the proposed feature activates.
	st, results, err = e.Apply(ctx, st, Request{
		Type:      RequestApproveChange,
		FeatureID: "draft",
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.Equal(t, prop.ID, results[0].Proposal.ID)
	assert.Equal(t, types.ProposalApproved, results[0].Proposal.Status)

	f, _ := st.Feature("draft")
	assert.Equal(t, types.StatusActive, f.Status)

	stored, err := audit.GetProposal(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ProposalApproved, stored.Status)
}

func TestProposeCreateStagesNode(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	st, results, err := e.Apply(context.Background(), seedStore(t), Request{
		Type:         RequestProposeChange,
		FeatureID:    "billing",
		Name:         "Billing",
		Summary:      "New billing module",
		ProposalType: types.ProposalCreate,
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Applied)

	f, ok := st.Feature("billing")
	require.True(t, ok)
	assert.Equal(t, types.StatusProposed, f.Status)
}

func TestRejectProposedFeature(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	ctx := context.Background()
	st := seedStore(t)

	st, results, err := e.Apply(ctx, st,
		Request{Type: RequestProposeChange, FeatureID: "draft", Summary: "promote"},
		Request{Type: RequestRejectChange, FeatureID: "draft", Rationale: "out of scope"},
	)
	require.NoError(t, err)
	require.NoError(t, results[1].Err)
	assert.Equal(t, types.ProposalRejected, results[1].Proposal.Status)
	assert.Equal(t, "out of scope", results[1].Proposal.Rationale)

	f, _ := st.Feature("draft")
	assert.Equal(t, types.StatusRejected, f.Status)
}

func TestResolveIsImmutableOnceResolved(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	ctx := context.Background()
	st := seedStore(t)

	st, results, err := e.Apply(ctx, st,
		Request{Type: RequestProposeChange, FeatureID: "draft", Summary: "promote"},
	)
	require.NoError(t, err)
	propID := results[0].Proposal.ID

	_, results, err = e.Apply(ctx, st,
		Request{Type: RequestApproveChange, ProposalID: propID},
		Request{Type: RequestRejectChange, ProposalID: propID},
	)
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	assert.True(t, types.IsConflict(results[1].Err))
}

func TestApproveSynthesizesProposal(t *testing.T) {
	e, audit := newTestEngine(&recordingPersister{})
	ctx := context.Background()

	// No proposal exists for auth; approval still resolves and records one.
	_, results, err := e.Apply(ctx, seedStore(t), Request{
		Type:      RequestApproveChange,
		FeatureID: "auth",
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Proposal)
	assert.Equal(t, types.ProposalApproved, results[0].Proposal.Status)

	stored, err := audit.GetProposal(ctx, results[0].Proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, "auth", stored.FeatureID)
}

func TestAskClarifyingQuestion(t *testing.T) {
	e, audit := newTestEngine(&recordingPersister{})
	ctx := context.Background()

	_, results, err := e.Apply(ctx, seedStore(t), Request{
		Type:              RequestAskQuestion,
		Question:          "Should OAuth live under auth?",
		Options:           []string{"yes", "separate feature"},
		RelatedFeatureIDs: []string{"auth"},
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Question)
	assert.Equal(t, types.QuestionPending, results[0].Question.Status)

	questions, err := audit.ListQuestions(ctx, types.QuestionPending)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, []string{"auth"}, questions[0].RelatedFeatureIDs)
}

func TestAnalyzeImpactRequest(t *testing.T) {
	e, audit := newTestEngine(&recordingPersister{})
	ctx := context.Background()

	_, results, err := e.Apply(ctx, seedStore(t), Request{
		Type:      RequestAnalyzeImpact,
		FeatureID: "auth",
	})
	require.NoError(t, err)
	res := results[0]
	require.NoError(t, res.Err)
	require.NotNil(t, res.Impact)
	assert.Equal(t, "update", res.Impact.ChangeType, "change type defaults to update")
	assert.Equal(t, []string{"session"}, res.Impact.AffectedFeatures)
	assert.False(t, res.Applied)

	// Advisory requests leave no history.
	history, err := audit.ListHistory(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReplyWithoutChange(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	st := seedStore(t)
	next, results, err := e.Apply(context.Background(), st, Request{
		Type:  RequestReplyWithoutChange,
		Reply: "The graph already models this.",
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "The graph already models this.", results[0].Summary)
	assert.Same(t, st, next)
}

func TestBatchIsolation(t *testing.T) {
	p := &recordingPersister{}
	e, _ := newTestEngine(p)

	st, results, err := e.Apply(context.Background(), seedStore(t),
		Request{Type: RequestCreateFeature, FeatureID: "billing", Name: "Billing"},
		Request{Type: RequestCreateFeature, FeatureID: "auth", Name: "dup"}, // conflict
		Request{Type: RequestConnectFeatures, SourceFeatureID: "billing", TargetFeatureID: "auth"},
	)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	require.NoError(t, results[2].Err, "requests after a failed one still run")

	_, ok := st.EdgeBetween("billing", "auth")
	assert.True(t, ok)
	assert.Len(t, p.files, 2)
}

func TestPersistFailureAbortsBatch(t *testing.T) {
	p := &recordingPersister{fail: &types.PersistenceError{Op: "persist", Path: "x", Err: fmt.Errorf("disk full")}}
	e, audit := newTestEngine(p)
	st := seedStore(t)

	next, results, err := e.Apply(context.Background(), st,
		Request{Type: RequestCreateFeature, FeatureID: "billing", Name: "Billing"},
		Request{Type: RequestCreateFeature, FeatureID: "metrics", Name: "Metrics"},
	)
	require.Error(t, err)
	require.Len(t, results, 1, "the batch stops at the persistence failure")
	require.Error(t, results[0].Err)
	assert.Same(t, st, next, "nothing durable happened, so the old snapshot stands")

	history, herr := audit.ListHistory(context.Background(), 0)
	require.NoError(t, herr)
	assert.Empty(t, history, "no audit entry for a change that never landed")
}

func TestValidateRejectsMalformedRequests(t *testing.T) {
	e, _ := newTestEngine(&recordingPersister{})
	tests := []struct {
		name string
		req  Request
	}{
		{"unknown type", Request{Type: "explode"}},
		{"create without id", Request{Type: RequestCreateFeature, Name: "x"}},
		{"create without name", Request{Type: RequestCreateFeature, FeatureID: "x"}},
		{"update without fields", Request{Type: RequestUpdateFeature, FeatureID: "x"}},
		{"connect without target", Request{Type: RequestConnectFeatures, SourceFeatureID: "a"}},
		{"mark ready empty", Request{Type: RequestMarkReady}},
		{"propose without summary", Request{Type: RequestProposeChange, FeatureID: "a"}},
		{"approve without any id", Request{Type: RequestApproveChange}},
		{"question without text", Request{Type: RequestAskQuestion}},
		{"impact without feature", Request{Type: RequestAnalyzeImpact}},
		{"reply without text", Request{Type: RequestReplyWithoutChange}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, results, err := e.Apply(context.Background(), seedStore(t), tt.req)
			require.NoError(t, err)
			require.Error(t, results[0].Err)
			assert.True(t, types.IsValidation(results[0].Err))
		})
	}
}
