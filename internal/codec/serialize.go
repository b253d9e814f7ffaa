package codec

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/featuregraph/fg/internal/types"
)

// Serialize emits the canonical YAML form of a graph file.
//
// Output is deterministic: nodes are sorted by id, edges by
// (source, target, type), list-form artifact collections by their
// identity string, and map keys alphabetically (yaml.v3 sorts map keys
// on marshal). Repeated serialization of an unchanged graph produces
// byte-identical output, which keeps version-control diffs of the
// persisted file clean.
func Serialize(file *types.GraphFile) ([]byte, error) {
	canon := file.Clone()
	canonicalize(canon)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(canon); err != nil {
		return nil, &types.ValidationError{Message: fmt.Sprintf("serializing graph: %v", err)}
	}
	if err := enc.Close(); err != nil {
		return nil, &types.ValidationError{Message: fmt.Sprintf("serializing graph: %v", err)}
	}
	return buf.Bytes(), nil
}

func canonicalize(file *types.GraphFile) {
	sort.Slice(file.Nodes, func(i, j int) bool {
		return file.Nodes[i].ID < file.Nodes[j].ID
	})
	sort.Slice(file.Edges, func(i, j int) bool {
		return file.Edges[i].Key() < file.Edges[j].Key()
	})
	for i := range file.Nodes {
		sortCollection(file.Nodes[i].Artifacts)
	}
	sortCollection(file.Artifacts)
}

// sortCollection orders list-form collections by each ref's identity
// string. Map-form collections need no help: the YAML encoder sorts
// their keys.
func sortCollection(c *types.ArtifactCollection) {
	if c == nil || c.List == nil {
		return
	}
	sort.SliceStable(c.List, func(i, j int) bool {
		return c.List[i].Identity() < c.List[j].Identity()
	})
}
