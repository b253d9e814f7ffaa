// Package graph provides the immutable feature graph snapshot store.
//
// A Store is constructed from a complete, validated GraphFile and never
// mutated afterwards. The mutation engine builds a new Store per applied
// change (copy-on-write); consumers treat every snapshot they hold as
// read-only and replace it wholesale.
package graph

import (
	"sort"

	"github.com/featuregraph/fg/internal/types"
)

// Direction selects which neighbors of a feature to traverse.
type Direction string

const (
	// DirectionUpstream selects the features this feature points to:
	// its dependencies (edges where this feature is the source).
	DirectionUpstream Direction = "upstream"
	// DirectionDownstream selects the features that point to this
	// feature: its dependents (edges where this feature is the target).
	DirectionDownstream Direction = "downstream"
	// DirectionBoth selects the union of upstream and downstream.
	DirectionBoth Direction = "both"
)

// IsValid checks if the direction value is valid.
func (d Direction) IsValid() bool {
	return d == DirectionUpstream || d == DirectionDownstream || d == DirectionBoth
}

// Store holds one immutable feature graph snapshot and answers
// structural queries against it.
type Store struct {
	version   int
	nodes     map[string]*types.FeatureNode
	order     []string // node ids, sorted
	edges     []types.FeatureEdge
	artifacts *types.ArtifactCollection
	outbound  map[string][]string // source id -> target ids
	inbound   map[string][]string // target id -> source ids
}

// New constructs a Store from a complete graph file. The file is
// validated (unique ids, unique edges, resolvable endpoints) and deep
// copied, so later changes to the input do not leak into the snapshot.
func New(file *types.GraphFile) (*Store, error) {
	if file == nil {
		file = types.EmptyGraphFile()
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	file = file.Clone()

	s := &Store{
		version:   file.Version,
		nodes:     make(map[string]*types.FeatureNode, len(file.Nodes)),
		edges:     file.Edges,
		artifacts: file.Artifacts,
		outbound:  make(map[string][]string),
		inbound:   make(map[string][]string),
	}
	for i := range file.Nodes {
		n := &file.Nodes[i]
		s.nodes[n.ID] = n
		s.order = append(s.order, n.ID)
	}
	sort.Strings(s.order)
	for i := range s.edges {
		e := &s.edges[i]
		s.outbound[e.Source] = append(s.outbound[e.Source], e.Target)
		s.inbound[e.Target] = append(s.inbound[e.Target], e.Source)
	}
	return s, nil
}

// Empty returns a snapshot of a fresh version-1 graph.
func Empty() *Store {
	s, _ := New(types.EmptyGraphFile())
	return s
}

// Version returns the graph schema version.
func (s *Store) Version() int {
	return s.version
}

// HasFeature reports whether a feature with the given id exists.
func (s *Store) HasFeature(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Feature returns a copy of the feature with the given id.
func (s *Store) Feature(id string) (*types.FeatureNode, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Features returns copies of all features in id-sorted order. The order
// is deterministic across calls so UI rendering stays stable.
func (s *Store) Features() []*types.FeatureNode {
	out := make([]*types.FeatureNode, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Len returns the number of features in the snapshot.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Edges returns copies of all edges in stored order.
func (s *Store) Edges() []types.FeatureEdge {
	out := make([]types.FeatureEdge, len(s.edges))
	for i := range s.edges {
		out[i] = s.edges[i].Clone()
	}
	return out
}

// Artifacts returns a copy of the top-level artifact collection, or nil.
func (s *Store) Artifacts() *types.ArtifactCollection {
	return s.artifacts.Clone()
}

// EdgeBetween returns the first edge from source to target, matched on
// the (source, target) pair regardless of type. Used by the mutation
// engine's connect/disconnect idempotence checks.
func (s *Store) EdgeBetween(source, target string) (types.FeatureEdge, bool) {
	for i := range s.edges {
		if s.edges[i].Source == source && s.edges[i].Target == target {
			return s.edges[i].Clone(), true
		}
	}
	return types.FeatureEdge{}, false
}

// Neighbors returns the features adjacent to id in the given direction.
//
// Upstream neighbors are the features id points to (its dependencies);
// downstream neighbors are the features pointing to id (its dependents).
// The result contains no duplicates, and includes id itself only when a
// genuine self-loop edge exists. An unknown id yields an empty slice,
// not an error: graphs may reference ids added concurrently.
func (s *Store) Neighbors(id string, dir Direction) []*types.FeatureNode {
	var ids []string
	switch dir {
	case DirectionUpstream:
		ids = s.outbound[id]
	case DirectionDownstream:
		ids = s.inbound[id]
	case DirectionBoth:
		ids = append(append([]string{}, s.outbound[id]...), s.inbound[id]...)
	default:
		return nil
	}

	seen := make(map[string]bool, len(ids))
	var out []*types.FeatureNode
	for _, nid := range ids {
		if seen[nid] {
			continue
		}
		seen[nid] = true
		if n, ok := s.nodes[nid]; ok {
			out = append(out, n.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NeighborIDs returns just the ids of Neighbors(id, dir), sorted.
func (s *Store) NeighborIDs(id string, dir Direction) []string {
	nodes := s.Neighbors(id, dir)
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

// File returns the full structural serialization of the snapshot:
// version, nodes (id-sorted), edges, and top-level artifacts. The
// returned value is a deep copy safe for the caller to modify, which is
// how the mutation engine derives successor snapshots.
func (s *Store) File() *types.GraphFile {
	file := &types.GraphFile{Version: s.version}
	for _, id := range s.order {
		file.Nodes = append(file.Nodes, *s.nodes[id].Clone())
	}
	for i := range s.edges {
		file.Edges = append(file.Edges, s.edges[i].Clone())
	}
	file.Artifacts = s.artifacts.Clone()
	return file
}
