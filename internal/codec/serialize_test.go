package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featuregraph/fg/internal/types"
)

func TestSerializeDeterministic(t *testing.T) {
	file := &types.GraphFile{
		Version: 3,
		Nodes: []types.FeatureNode{
			{ID: "zeta", Status: types.StatusActive},
			{ID: "alpha", Status: types.StatusActive, Artifacts: &types.ArtifactCollection{
				List: []types.ArtifactRef{{Path: "z.go"}, {Path: "a.go"}},
			}},
		},
		Edges: []types.FeatureEdge{
			{Source: "zeta", Target: "alpha", Type: types.EdgeDependsOn},
			{Source: "alpha", Target: "zeta", Type: types.EdgeRelatedTo},
		},
	}

	first, err := Serialize(file)
	require.NoError(t, err)
	second, err := Serialize(file)
	require.NoError(t, err)
	assert.Equal(t, first, second, "repeated serialization must be byte-identical")

	// Differently ordered input canonicalizes to the same bytes.
	reordered := file.Clone()
	reordered.Nodes[0], reordered.Nodes[1] = reordered.Nodes[1], reordered.Nodes[0]
	reordered.Edges[0], reordered.Edges[1] = reordered.Edges[1], reordered.Edges[0]
	third, err := Serialize(reordered)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestSerializeDoesNotMutateInput(t *testing.T) {
	file := &types.GraphFile{
		Version: 1,
		Nodes: []types.FeatureNode{
			{ID: "zeta"},
			{ID: "alpha"},
		},
	}
	_, err := Serialize(file)
	require.NoError(t, err)
	assert.Equal(t, "zeta", file.Nodes[0].ID, "caller's node order must survive")
}

func TestSerializeParseRoundTrip(t *testing.T) {
	file := &types.GraphFile{
		Version: 2,
		Nodes: []types.FeatureNode{
			{
				ID:     "auth",
				Name:   "Authentication",
				Status: types.StatusActive,
				Artifacts: &types.ArtifactCollection{
					List: []types.ArtifactRef{
						{Path: "src/auth/login.ts"},
						{Path: "docs/auth.md", Name: "auth docs"},
					},
				},
				Metadata: map[string]any{"owner": "platform"},
			},
			{ID: "session", Status: types.StatusProposed},
		},
		Edges: []types.FeatureEdge{
			{Source: "auth", Target: "session", Type: types.EdgeDependsOn},
		},
		Artifacts: &types.ArtifactCollection{
			Map: map[string]types.ArtifactRef{"readme": {Path: "README.md"}},
		},
	}

	data, err := Serialize(file)
	require.NoError(t, err)

	back, err := Parse(data, ".")
	require.NoError(t, err)

	assert.Equal(t, file.Version, back.Version)
	require.Len(t, back.Nodes, 2)
	assert.Equal(t, "auth", back.Nodes[0].ID)
	assert.Equal(t, "platform", back.Nodes[0].Metadata["owner"])
	require.NotNil(t, back.Nodes[0].Artifacts)
	assert.Equal(t, 2, back.Nodes[0].Artifacts.Len())
	assert.NotNil(t, back.Artifacts.Map, "map-form collection keeps its form")
	require.Len(t, back.Edges, 1)

	// A second trip is stable.
	again, err := Serialize(back)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}
