// Package codec converts between the on-disk graph file representation
// and the in-memory graph store.
//
// Graph files are YAML. Node and edge entries may be authored in three
// forms: a fully inline object, an external reference
// ({source: <path>}), or a manifest pointer ({manifest: <path>}) whose
// file lists further sources ({sources: [...]}), recursively. The codec
// resolves all indirection into a fully materialized GraphFile before
// any store is constructed; a single unresolvable entry fails the whole
// load, because a partial graph is worse than no graph for dependency
// correctness.
package codec

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/featuregraph/fg/internal/types"
)

// fileDoc is the raw top-level shape of a graph file before entry
// resolution.
type fileDoc struct {
	Version   int                       `yaml:"version"`
	Nodes     []yaml.Node               `yaml:"nodes"`
	Edges     []yaml.Node               `yaml:"edges"`
	Artifacts *types.ArtifactCollection `yaml:"artifacts"`
}

// manifestDoc is the shape of a manifest file.
type manifestDoc struct {
	Sources []yaml.Node `yaml:"sources"`
}

// Load reads and resolves the graph file at path.
func Load(path string) (*types.GraphFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.PersistenceError{Op: "load", Path: path, Err: err}
	}
	return Parse(data, filepath.Dir(path))
}

// Parse resolves a graph file's contents into a materialized GraphFile.
// Relative source/manifest paths are resolved against baseDir.
func Parse(data []byte, baseDir string) (*types.GraphFile, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &types.ValidationError{Message: fmt.Sprintf("malformed graph file: %v", err)}
	}

	r := &resolver{onStack: make(map[string]bool)}

	file := &types.GraphFile{
		Version:   doc.Version,
		Artifacts: doc.Artifacts,
	}
	for i := range doc.Nodes {
		nodes, err := r.resolveNodeEntry(&doc.Nodes[i], baseDir)
		if err != nil {
			return nil, err
		}
		file.Nodes = append(file.Nodes, nodes...)
	}
	for i := range doc.Edges {
		edges, err := r.resolveEdgeEntry(&doc.Edges[i], baseDir)
		if err != nil {
			return nil, err
		}
		file.Edges = append(file.Edges, edges...)
	}

	// Empty statuses default to inactive so every materialized node has
	// a lifecycle position.
	for i := range file.Nodes {
		if file.Nodes[i].Status == "" {
			file.Nodes[i].Status = types.StatusInactive
		}
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return file, nil
}

// resolver tracks the chain of files currently being resolved so that
// cyclic manifest references fail loudly instead of recursing forever.
type resolver struct {
	stack   []string
	onStack map[string]bool
}

func (r *resolver) push(path string) error {
	if r.onStack[path] {
		cycle := append(append([]string{}, r.stack...), path)
		return &types.CycleError{Path: cycle}
	}
	r.stack = append(r.stack, path)
	r.onStack[path] = true
	return nil
}

func (r *resolver) pop() {
	last := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	delete(r.onStack, last)
}

// mappingKeys returns the key names of a YAML mapping node.
func mappingKeys(n *yaml.Node) map[string]*yaml.Node {
	keys := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys[n.Content[i].Value] = n.Content[i+1]
	}
	return keys
}

// resolveNodeEntry materializes one node entry, which may expand to any
// number of nodes when it points at a manifest.
func (r *resolver) resolveNodeEntry(entry *yaml.Node, baseDir string) ([]types.FeatureNode, error) {
	switch entry.Kind {
	case yaml.ScalarNode:
		return r.loadNodeFile(resolvePath(baseDir, entry.Value))
	case yaml.MappingNode:
		keys := mappingKeys(entry)
		switch {
		case keys["id"] != nil:
			var node types.FeatureNode
			if err := entry.Decode(&node); err != nil {
				return nil, &types.ValidationError{Message: fmt.Sprintf("invalid node entry (line %d): %v", entry.Line, err)}
			}
			return []types.FeatureNode{node}, nil
		case keys["manifest"] != nil:
			return r.loadNodeFile(resolvePath(baseDir, keys["manifest"].Value))
		case keys["source"] != nil && len(keys) == 1:
			return r.loadNodeFile(resolvePath(baseDir, keys["source"].Value))
		default:
			return nil, &types.ValidationError{Message: fmt.Sprintf("node entry must be inline, a source reference, or a manifest reference (line %d)", entry.Line)}
		}
	default:
		return nil, &types.ValidationError{Message: fmt.Sprintf("node entry must be a string or mapping (line %d)", entry.Line)}
	}
}

// loadNodeFile reads an external node definition or manifest file. The
// file may contain a single node object, a sequence of entries, or a
// manifest ({sources: [...]}); entries recurse through resolveNodeEntry
// relative to the file's own directory.
func (r *resolver) loadNodeFile(path string) ([]types.FeatureNode, error) {
	if err := r.push(path); err != nil {
		return nil, err
	}
	defer r.pop()

	root, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	switch root.Kind {
	case yaml.SequenceNode:
		var out []types.FeatureNode
		for i := range root.Content {
			nodes, err := r.resolveNodeEntry(root.Content[i], dir)
			if err != nil {
				return nil, fmt.Errorf("resolving %s: %w", path, err)
			}
			out = append(out, nodes...)
		}
		return out, nil
	case yaml.MappingNode:
		if keys := mappingKeys(root); keys["sources"] != nil {
			var manifest manifestDoc
			if err := root.Decode(&manifest); err != nil {
				return nil, &types.ValidationError{Message: fmt.Sprintf("invalid manifest %s: %v", path, err)}
			}
			var out []types.FeatureNode
			for i := range manifest.Sources {
				nodes, err := r.resolveNodeEntry(&manifest.Sources[i], dir)
				if err != nil {
					return nil, fmt.Errorf("resolving manifest %s: %w", path, err)
				}
				out = append(out, nodes...)
			}
			return out, nil
		}
		return r.resolveNodeEntry(root, dir)
	default:
		return nil, &types.ValidationError{Message: fmt.Sprintf("external node file %s must contain a mapping or sequence", path)}
	}
}

// resolveEdgeEntry materializes one edge entry. An inline edge carries a
// target or type key; a mapping with only a source key is an external
// reference (the edge field named source is only meaningful alongside
// target/type).
func (r *resolver) resolveEdgeEntry(entry *yaml.Node, baseDir string) ([]types.FeatureEdge, error) {
	switch entry.Kind {
	case yaml.ScalarNode:
		return r.loadEdgeFile(resolvePath(baseDir, entry.Value))
	case yaml.MappingNode:
		keys := mappingKeys(entry)
		switch {
		case keys["target"] != nil || keys["type"] != nil:
			var edge types.FeatureEdge
			if err := entry.Decode(&edge); err != nil {
				return nil, &types.ValidationError{Message: fmt.Sprintf("invalid edge entry (line %d): %v", entry.Line, err)}
			}
			return []types.FeatureEdge{edge}, nil
		case keys["manifest"] != nil:
			return r.loadEdgeFile(resolvePath(baseDir, keys["manifest"].Value))
		case keys["source"] != nil && len(keys) == 1:
			return r.loadEdgeFile(resolvePath(baseDir, keys["source"].Value))
		default:
			return nil, &types.ValidationError{Message: fmt.Sprintf("edge entry must be inline, a source reference, or a manifest reference (line %d)", entry.Line)}
		}
	default:
		return nil, &types.ValidationError{Message: fmt.Sprintf("edge entry must be a string or mapping (line %d)", entry.Line)}
	}
}

// loadEdgeFile reads an external edge definition or manifest file.
func (r *resolver) loadEdgeFile(path string) ([]types.FeatureEdge, error) {
	if err := r.push(path); err != nil {
		return nil, err
	}
	defer r.pop()

	root, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	switch root.Kind {
	case yaml.SequenceNode:
		var out []types.FeatureEdge
		for i := range root.Content {
			edges, err := r.resolveEdgeEntry(root.Content[i], dir)
			if err != nil {
				return nil, fmt.Errorf("resolving %s: %w", path, err)
			}
			out = append(out, edges...)
		}
		return out, nil
	case yaml.MappingNode:
		if keys := mappingKeys(root); keys["sources"] != nil {
			var manifest manifestDoc
			if err := root.Decode(&manifest); err != nil {
				return nil, &types.ValidationError{Message: fmt.Sprintf("invalid manifest %s: %v", path, err)}
			}
			var out []types.FeatureEdge
			for i := range manifest.Sources {
				edges, err := r.resolveEdgeEntry(&manifest.Sources[i], dir)
				if err != nil {
					return nil, fmt.Errorf("resolving manifest %s: %w", path, err)
				}
				out = append(out, edges...)
			}
			return out, nil
		}
		return r.resolveEdgeEntry(root, dir)
	default:
		return nil, &types.ValidationError{Message: fmt.Sprintf("external edge file %s must contain a mapping or sequence", path)}
	}
}

// readDocument reads a YAML file and returns its root content node.
func readDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ValidationError{Message: fmt.Sprintf("unresolvable reference: %v", err)}
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &types.ValidationError{Message: fmt.Sprintf("malformed file %s: %v", path, err)}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &types.ValidationError{Message: fmt.Sprintf("empty file %s", path)}
	}
	return doc.Content[0], nil
}

// resolvePath resolves a possibly relative reference against the
// directory of the file that made it, then cleans it so cycle detection
// compares like with like.
func resolvePath(baseDir, ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Clean(filepath.Join(baseDir, ref))
}
