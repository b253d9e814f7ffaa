package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featuregraph/fg/internal/types"
)

func testFile() *types.GraphFile {
	return &types.GraphFile{
		Version: 1,
		Nodes: []types.FeatureNode{
			{ID: "auth", Name: "Authentication", Status: types.StatusActive},
			{ID: "checkout", Name: "Checkout", Status: types.StatusActive},
			{ID: "payment", Name: "Payment", Status: types.StatusActive},
			{ID: "session", Name: "Sessions", Status: types.StatusActive},
		},
		Edges: []types.FeatureEdge{
			{Source: "auth", Target: "session", Type: types.EdgeDependsOn},
			{Source: "checkout", Target: "payment", Type: types.EdgeDependsOn},
			{Source: "checkout", Target: "auth", Type: types.EdgeDependsOn},
		},
	}
}

func TestNewRejectsInvalidFile(t *testing.T) {
	file := testFile()
	file.Edges = append(file.Edges, types.FeatureEdge{Source: "auth", Target: "ghost"})
	_, err := New(file)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestNewNilFileYieldsEmptyGraph(t *testing.T) {
	st, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Version())
	assert.Zero(t, st.Len())
}

func TestSnapshotIsolation(t *testing.T) {
	file := testFile()
	st, err := New(file)
	require.NoError(t, err)

	// Mutating the input after construction must not leak in.
	file.Nodes[0].Name = "mutated"
	f, ok := st.Feature("auth")
	require.True(t, ok)
	assert.Equal(t, "Authentication", f.Name)

	// Mutating a returned copy must not leak back.
	f.Name = "mutated again"
	f2, _ := st.Feature("auth")
	assert.Equal(t, "Authentication", f2.Name)
}

func TestNeighborsDirections(t *testing.T) {
	st, err := New(testFile())
	require.NoError(t, err)

	// checkout depends on auth and payment.
	assert.Equal(t, []string{"auth", "payment"}, st.NeighborIDs("checkout", DirectionUpstream))
	// auth is needed by checkout, and itself depends on session.
	assert.Equal(t, []string{"checkout"}, st.NeighborIDs("auth", DirectionDownstream))
	assert.Equal(t, []string{"checkout", "session"}, st.NeighborIDs("auth", DirectionBoth))
}

func TestNeighborsSymmetry(t *testing.T) {
	st, err := New(testFile())
	require.NoError(t, err)

	// If B is upstream of A, then A is downstream of B.
	for _, a := range st.Features() {
		for _, bID := range st.NeighborIDs(a.ID, DirectionUpstream) {
			assert.Contains(t, st.NeighborIDs(bID, DirectionDownstream), a.ID,
				"%s upstream of %s but reverse direction missing", bID, a.ID)
		}
	}
}

func TestNeighborsUnknownID(t *testing.T) {
	st, err := New(testFile())
	require.NoError(t, err)
	assert.Empty(t, st.Neighbors("ghost", DirectionBoth))
}

func TestNeighborsDeduplicatesBothDirections(t *testing.T) {
	file := testFile()
	// auth <-> session in both directions: session appears in both the
	// outbound and inbound lists of auth.
	file.Edges = append(file.Edges, types.FeatureEdge{Source: "session", Target: "auth", Type: types.EdgeRelatedTo})
	st, err := New(file)
	require.NoError(t, err)

	both := st.NeighborIDs("auth", DirectionBoth)
	assert.Equal(t, []string{"checkout", "session"}, both)
}

func TestEdgeBetweenIgnoresType(t *testing.T) {
	st, err := New(testFile())
	require.NoError(t, err)

	edge, ok := st.EdgeBetween("auth", "session")
	require.True(t, ok)
	assert.Equal(t, types.EdgeDependsOn, edge.Type)

	_, ok = st.EdgeBetween("session", "auth")
	assert.False(t, ok, "EdgeBetween is directional")
}

func TestFileRoundTrip(t *testing.T) {
	st, err := New(testFile())
	require.NoError(t, err)

	out := st.File()
	require.NoError(t, out.Validate())
	assert.Equal(t, st.Len(), len(out.Nodes))
	assert.Len(t, out.Edges, 3)

	// The returned file is a copy; editing it leaves the snapshot alone.
	out.Nodes[0].Name = "mutated"
	f, _ := st.Feature(out.Nodes[0].ID)
	assert.NotEqual(t, "mutated", f.Name)

	// Nodes come back id-sorted.
	for i := 1; i < len(out.Nodes); i++ {
		assert.Less(t, out.Nodes[i-1].ID, out.Nodes[i].ID)
	}
}

func TestFeaturesSortedAndStable(t *testing.T) {
	st, err := New(testFile())
	require.NoError(t, err)

	first := st.Features()
	second := st.Features()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].ID, first[i].ID)
	}
}
