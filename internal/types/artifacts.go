package types

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ArtifactRef identifies a test, doc, or code artifact attached to a
// feature. In graph files it may be authored either as a bare string
// (treated as a path) or as a structured object. No field is mandatory;
// an empty ref degrades gracefully to "no match" in the heuristics.
type ArtifactRef struct {
	Name        string         `yaml:"name,omitempty" json:"name,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Path        string         `yaml:"path,omitempty" json:"path,omitempty"`
	URL         string         `yaml:"url,omitempty" json:"url,omitempty"`
	Type        string         `yaml:"type,omitempty" json:"type,omitempty"`
	Metadata    map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// bare reports whether the ref carries only a path, i.e. it can be
// serialized back to the bare-string authored form.
func (a *ArtifactRef) bare() bool {
	return a.Path != "" && a.Name == "" && a.Description == "" &&
		a.URL == "" && a.Type == "" && len(a.Metadata) == 0
}

// Identity returns the primary identifying string of the ref, in
// path > url > name precedence. Empty when the ref has no identity.
func (a *ArtifactRef) Identity() string {
	switch {
	case a.Path != "":
		return a.Path
	case a.URL != "":
		return a.URL
	default:
		return a.Name
	}
}

// Values returns all comparable identity strings (path, url, name),
// skipping empty fields. Used by the heuristics engine.
func (a *ArtifactRef) Values() []string {
	var out []string
	for _, v := range []string{a.Path, a.URL, a.Name} {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns a deep copy of the ref.
func (a ArtifactRef) Clone() ArtifactRef {
	a.Metadata = cloneMetadata(a.Metadata)
	return a
}

// artifactRefAlias avoids marshal recursion.
type artifactRefAlias ArtifactRef

// UnmarshalYAML accepts either a bare string (path) or a mapping.
func (a *ArtifactRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		a.Path = value.Value
		return nil
	case yaml.MappingNode:
		var alias artifactRefAlias
		if err := value.Decode(&alias); err != nil {
			return &ValidationError{Message: fmt.Sprintf("invalid artifact reference: %v", err)}
		}
		*a = ArtifactRef(alias)
		return nil
	default:
		return &ValidationError{Message: fmt.Sprintf("artifact reference must be a string or mapping (line %d)", value.Line)}
	}
}

// MarshalYAML emits the bare-string form when only a path is set.
func (a ArtifactRef) MarshalYAML() (interface{}, error) {
	if a.bare() {
		return a.Path, nil
	}
	return artifactRefAlias(a), nil
}

// UnmarshalJSON accepts either a JSON string or an object.
func (a *ArtifactRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.Path = s
		return nil
	}
	var alias artifactRefAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*a = ArtifactRef(alias)
	return nil
}

// MarshalJSON emits the bare-string form when only a path is set.
func (a ArtifactRef) MarshalJSON() ([]byte, error) {
	if a.bare() {
		return json.Marshal(a.Path)
	}
	return json.Marshal(artifactRefAlias(a))
}

// ArtifactCollection holds a feature's (or the graph's top-level)
// artifacts, authored either as an ordered list or as a string-keyed
// map. Exactly one of List and Map is populated; the authored form is
// preserved through serialization.
type ArtifactCollection struct {
	List []ArtifactRef
	Map  map[string]ArtifactRef
}

// Refs returns the refs in deterministic order: list order for list
// form, key-sorted for map form.
func (c *ArtifactCollection) Refs() []ArtifactRef {
	if c == nil {
		return nil
	}
	if c.Map != nil {
		keys := make([]string, 0, len(c.Map))
		for k := range c.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]ArtifactRef, 0, len(keys))
		for _, k := range keys {
			out = append(out, c.Map[k])
		}
		return out
	}
	return c.List
}

// Len returns the number of refs in the collection.
func (c *ArtifactCollection) Len() int {
	if c == nil {
		return 0
	}
	if c.Map != nil {
		return len(c.Map)
	}
	return len(c.List)
}

// Clone returns a deep copy of the collection.
func (c *ArtifactCollection) Clone() *ArtifactCollection {
	if c == nil {
		return nil
	}
	out := &ArtifactCollection{}
	if c.List != nil {
		out.List = make([]ArtifactRef, len(c.List))
		for i, r := range c.List {
			out.List[i] = r.Clone()
		}
	}
	if c.Map != nil {
		out.Map = make(map[string]ArtifactRef, len(c.Map))
		for k, r := range c.Map {
			out.Map[k] = r.Clone()
		}
	}
	return out
}

// IsZero lets yaml omitempty skip empty collections.
func (c ArtifactCollection) IsZero() bool {
	return len(c.List) == 0 && len(c.Map) == 0
}

// UnmarshalYAML accepts a sequence (list form) or mapping (map form).
func (c *ArtifactCollection) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		return value.Decode(&c.List)
	case yaml.MappingNode:
		return value.Decode(&c.Map)
	default:
		return &ValidationError{Message: fmt.Sprintf("artifacts must be a list or mapping (line %d)", value.Line)}
	}
}

// MarshalYAML emits the authored form. List entries that are bare
// strings are sorted alphabetically only by the codec's canonicalizer,
// not here, so in-memory order is respected by default.
func (c ArtifactCollection) MarshalYAML() (interface{}, error) {
	if c.Map != nil {
		return c.Map, nil
	}
	return c.List, nil
}

// UnmarshalJSON accepts a JSON array or object.
func (c *ArtifactCollection) UnmarshalJSON(data []byte) error {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return json.Unmarshal(data, &c.List)
		case '{':
			return json.Unmarshal(data, &c.Map)
		default:
			return &ValidationError{Message: "artifacts must be an array or object"}
		}
	}
	return nil
}

// MarshalJSON emits the authored form.
func (c ArtifactCollection) MarshalJSON() ([]byte, error) {
	if c.Map != nil {
		return json.Marshal(c.Map)
	}
	return json.Marshal(c.List)
}
