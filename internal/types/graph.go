// Package types defines the feature graph data model: nodes, edges,
// artifact references, change proposals, and the audit history entries
// produced by the mutation engine.
package types

import (
	"fmt"
	"strings"
)

// FeatureStatus represents the lifecycle state of a feature node.
//
// The enum is open: unknown values are preserved through load/serialize
// so that downstream tools can introduce new states without breaking
// older readers. IsKnown reports whether the value is one of the states
// this engine reasons about.
type FeatureStatus string

const (
	StatusInactive FeatureStatus = "inactive"
	StatusProposed FeatureStatus = "proposed"
	StatusActive   FeatureStatus = "active"
	StatusRejected FeatureStatus = "rejected"
)

// IsKnown reports whether the status is one of the built-in states.
func (s FeatureStatus) IsKnown() bool {
	switch s {
	case StatusInactive, StatusProposed, StatusActive, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status ends the feature lifecycle.
// Re-proposing a rejected feature requires a fresh proposal.
func (s FeatureStatus) Terminal() bool {
	return s == StatusActive || s == StatusRejected
}

// CanTransitionTo checks if a transition from this status to the target
// status is valid. The feature lifecycle is:
//
//	inactive → proposed → active
//	            proposed → rejected
//	inactive → active (no clarification required)
func (s FeatureStatus) CanTransitionTo(target FeatureStatus) bool {
	switch s {
	case StatusInactive:
		return target == StatusProposed || target == StatusActive
	case StatusProposed:
		return target == StatusActive || target == StatusRejected
	}
	return false
}

// EdgeType categorizes the relationship between two features.
// Like FeatureStatus this is an open enum.
type EdgeType string

const (
	EdgeDependsOn EdgeType = "depends_on"
	EdgeExtends   EdgeType = "extends"
	EdgeRelatedTo EdgeType = "related_to"
)

// IsKnown reports whether the edge type is one of the built-in types.
func (t EdgeType) IsKnown() bool {
	switch t {
	case EdgeDependsOn, EdgeExtends, EdgeRelatedTo:
		return true
	}
	return false
}

// FeatureNode represents one unit of product functionality.
type FeatureNode struct {
	ID          string              `yaml:"id" json:"id"`
	Name        string              `yaml:"name,omitempty" json:"name,omitempty"`
	Description string              `yaml:"description,omitempty" json:"description,omitempty"`
	Status      FeatureStatus       `yaml:"status,omitempty" json:"status,omitempty"`
	Group       string              `yaml:"group,omitempty" json:"group,omitempty"`
	Artifacts   *ArtifactCollection `yaml:"artifacts,omitempty" json:"artifacts,omitempty"`
	Metadata    map[string]any      `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Validate checks if the node has valid field values.
func (n *FeatureNode) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return &ValidationError{Message: "feature id is required"}
	}
	return nil
}

// Clone returns a deep copy of the node. Snapshots hand out clones so
// callers can never mutate stored state in place.
func (n *FeatureNode) Clone() *FeatureNode {
	if n == nil {
		return nil
	}
	out := *n
	out.Metadata = cloneMetadata(n.Metadata)
	out.Artifacts = n.Artifacts.Clone()
	return &out
}

// FeatureEdge is a directed, typed relationship between two features.
type FeatureEdge struct {
	Source   string         `yaml:"source" json:"source"`
	Target   string         `yaml:"target" json:"target"`
	Type     EdgeType       `yaml:"type,omitempty" json:"type,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Validate checks if the edge has valid field values.
func (e *FeatureEdge) Validate() error {
	if e.Source == "" || e.Target == "" {
		return &ValidationError{Message: "edge source and target are required"}
	}
	return nil
}

// Key returns the identity key for edge uniqueness: (source, target, type).
func (e *FeatureEdge) Key() string {
	return fmt.Sprintf("%s\x00%s\x00%s", e.Source, e.Target, e.Type)
}

// Clone returns a deep copy of the edge.
func (e *FeatureEdge) Clone() FeatureEdge {
	out := *e
	out.Metadata = cloneMetadata(e.Metadata)
	return out
}

// GraphFile is the fully materialized structural form of a feature
// graph: what the codec produces from disk and what the store serializes
// back. All manifest/source indirection has been resolved by the time a
// GraphFile exists.
type GraphFile struct {
	Version   int                 `yaml:"version" json:"version"`
	Nodes     []FeatureNode       `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	Edges     []FeatureEdge       `yaml:"edges,omitempty" json:"edges,omitempty"`
	Artifacts *ArtifactCollection `yaml:"artifacts,omitempty" json:"artifacts,omitempty"`
}

// EmptyGraphFile returns a fresh version-1 graph with no content.
// Used on first load of a workspace that has no graph file yet.
func EmptyGraphFile() *GraphFile {
	return &GraphFile{Version: 1}
}

// Validate checks structural invariants: positive version, valid nodes
// and edges, unique node ids, unique (source, target, type) edges, and
// edge endpoints that reference declared nodes.
func (g *GraphFile) Validate() error {
	if g.Version <= 0 {
		return &ValidationError{Message: fmt.Sprintf("version must be positive (got %d)", g.Version)}
	}
	ids := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if err := n.Validate(); err != nil {
			return err
		}
		if ids[n.ID] {
			return &ValidationError{Message: fmt.Sprintf("duplicate feature id %q", n.ID)}
		}
		ids[n.ID] = true
	}
	seen := make(map[string]bool, len(g.Edges))
	for i := range g.Edges {
		e := &g.Edges[i]
		if err := e.Validate(); err != nil {
			return err
		}
		if !ids[e.Source] {
			return &ValidationError{Message: fmt.Sprintf("edge references unknown source feature %q", e.Source)}
		}
		if !ids[e.Target] {
			return &ValidationError{Message: fmt.Sprintf("edge references unknown target feature %q", e.Target)}
		}
		if seen[e.Key()] {
			return &ValidationError{Message: fmt.Sprintf("duplicate edge %s -> %s (%s)", e.Source, e.Target, e.Type)}
		}
		seen[e.Key()] = true
	}
	return nil
}

// Clone returns a deep copy of the graph file.
func (g *GraphFile) Clone() *GraphFile {
	out := &GraphFile{Version: g.Version}
	if g.Nodes != nil {
		out.Nodes = make([]FeatureNode, len(g.Nodes))
		for i := range g.Nodes {
			out.Nodes[i] = *g.Nodes[i].Clone()
		}
	}
	if g.Edges != nil {
		out.Edges = make([]FeatureEdge, len(g.Edges))
		for i := range g.Edges {
			out.Edges[i] = g.Edges[i].Clone()
		}
	}
	out.Artifacts = g.Artifacts.Clone()
	return out
}

// cloneMetadata copies a metadata map one level deep. Values are
// JSON-safe scalars, slices, or maps; nested containers are copied too.
func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMetadata(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
