package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestArtifactRefYAMLForms(t *testing.T) {
	t.Run("bare string is a path", func(t *testing.T) {
		var ref ArtifactRef
		require.NoError(t, yaml.Unmarshal([]byte(`src/auth/login.ts`), &ref))
		assert.Equal(t, "src/auth/login.ts", ref.Path)
	})

	t.Run("structured object", func(t *testing.T) {
		var ref ArtifactRef
		data := []byte("name: login flow\npath: src/auth/login.ts\ntype: code\n")
		require.NoError(t, yaml.Unmarshal(data, &ref))
		assert.Equal(t, "login flow", ref.Name)
		assert.Equal(t, "src/auth/login.ts", ref.Path)
		assert.Equal(t, "code", ref.Type)
	})

	t.Run("sequence value is rejected", func(t *testing.T) {
		var ref ArtifactRef
		err := yaml.Unmarshal([]byte("- a\n- b\n"), &ref)
		require.Error(t, err)
	})
}

func TestArtifactRefMarshalPreservesBareForm(t *testing.T) {
	bare := ArtifactRef{Path: "docs/auth.md"}
	out, err := yaml.Marshal(bare)
	require.NoError(t, err)
	assert.Equal(t, "docs/auth.md\n", string(out))

	structured := ArtifactRef{Path: "docs/auth.md", Name: "auth docs"}
	out, err = yaml.Marshal(structured)
	require.NoError(t, err)
	assert.Contains(t, string(out), "name: auth docs")
	assert.Contains(t, string(out), "path: docs/auth.md")
}

func TestArtifactRefJSONForms(t *testing.T) {
	var ref ArtifactRef
	require.NoError(t, json.Unmarshal([]byte(`"src/pay/stripe.go"`), &ref))
	assert.Equal(t, "src/pay/stripe.go", ref.Path)

	out, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.Equal(t, `"src/pay/stripe.go"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"url":"https://ci/job/1"}`), &ref))
	assert.Equal(t, "https://ci/job/1", ref.URL)
}

func TestArtifactRefIdentityPrecedence(t *testing.T) {
	tests := []struct {
		name string
		ref  ArtifactRef
		want string
	}{
		{"path wins", ArtifactRef{Path: "p", URL: "u", Name: "n"}, "p"},
		{"url over name", ArtifactRef{URL: "u", Name: "n"}, "u"},
		{"name last", ArtifactRef{Name: "n"}, "n"},
		{"empty ref", ArtifactRef{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.Identity())
		})
	}
}

func TestArtifactCollectionForms(t *testing.T) {
	t.Run("list form", func(t *testing.T) {
		var c ArtifactCollection
		data := []byte("- src/a.go\n- path: src/b.go\n  name: b\n")
		require.NoError(t, yaml.Unmarshal(data, &c))
		require.Len(t, c.List, 2)
		assert.Nil(t, c.Map)
		assert.Equal(t, "src/a.go", c.List[0].Path)
		assert.Equal(t, "b", c.List[1].Name)
	})

	t.Run("map form", func(t *testing.T) {
		var c ArtifactCollection
		data := []byte("entrypoint: src/main.go\ndocs:\n  url: https://wiki/auth\n")
		require.NoError(t, yaml.Unmarshal(data, &c))
		require.Len(t, c.Map, 2)
		assert.Nil(t, c.List)
		assert.Equal(t, "src/main.go", c.Map["entrypoint"].Path)
		assert.Equal(t, "https://wiki/auth", c.Map["docs"].URL)
	})

	t.Run("scalar rejected", func(t *testing.T) {
		var c ArtifactCollection
		require.Error(t, yaml.Unmarshal([]byte(`just-a-string`), &c))
	})
}

func TestArtifactCollectionRefsDeterministic(t *testing.T) {
	c := &ArtifactCollection{Map: map[string]ArtifactRef{
		"zeta":  {Path: "z.go"},
		"alpha": {Path: "a.go"},
		"mid":   {Path: "m.go"},
	}}

	refs := c.Refs()
	require.Len(t, refs, 3)
	// Map form comes back key-sorted regardless of map iteration order.
	assert.Equal(t, "a.go", refs[0].Path)
	assert.Equal(t, "m.go", refs[1].Path)
	assert.Equal(t, "z.go", refs[2].Path)
}

func TestArtifactCollectionRoundTripPreservesForm(t *testing.T) {
	var c ArtifactCollection
	require.NoError(t, yaml.Unmarshal([]byte("- src/a.go\n- src/b.go\n"), &c))

	out, err := yaml.Marshal(c)
	require.NoError(t, err)

	var back ArtifactCollection
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.NotNil(t, back.List)
	assert.Nil(t, back.Map)
	assert.Equal(t, c.List, back.List)
}
