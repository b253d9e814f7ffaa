package heuristics

import (
	"sort"
	"strings"

	"github.com/featuregraph/fg/internal/graph"
	"github.com/featuregraph/fg/internal/types"
)

// Config tunes the mapping engine's result shaping.
type Config struct {
	// MaxResults caps how many matches a query returns. 0 means no cap.
	MaxResults int

	// MinScore drops matches scoring below the threshold. Direct plan
	// matches are exempt: explicitly authored hints are never silently
	// dropped.
	MinScore float64
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MaxResults: 10,
		MinScore:   0,
	}
}

// Engine ranks candidate features for artifact, test, and code-change
// queries. It holds no graph state; every call takes a snapshot.
type Engine struct {
	cfg Config
}

// New creates a mapping engine.
func New(cfg Config) *Engine {
	if cfg.MaxResults < 0 {
		cfg.MaxResults = 0
	}
	return &Engine{cfg: cfg}
}

// Match is one ranked candidate feature.
type Match struct {
	Feature         *types.FeatureNode
	Score           float64
	DirectPlanMatch bool
}

// FeaturesForArtifact ranks features matching a free-text artifact path
// or name. Results are sorted by descending score, ties broken by
// feature name.
func (e *Engine) FeaturesForArtifact(st *graph.Store, query string, ctx *Context) []Match {
	return e.rank(st, query, ctx, false)
}

// FeaturesForTest ranks features matching a test path. Unlike artifact
// queries, the query is also compared with test markers stripped, and
// features declaring test-like artifacts receive a bonus.
func (e *Engine) FeaturesForTest(st *graph.Store, query string, ctx *Context) []Match {
	return e.rank(st, query, ctx, true)
}

func (e *Engine) rank(st *graph.Store, query string, ctx *Context, testQuery bool) []Match {
	var matches []Match
	for _, f := range st.Features() {
		score, direct := Score(f, query, ctx, testQuery)
		if score <= 0 && !direct {
			continue
		}
		if score < e.cfg.MinScore && !direct {
			continue
		}
		matches = append(matches, Match{Feature: f, Score: score, DirectPlanMatch: direct})
	}
	sortMatches(matches)
	if e.cfg.MaxResults > 0 && len(matches) > e.cfg.MaxResults {
		matches = matches[:e.cfg.MaxResults]
	}
	return matches
}

// TestsForFeature returns the de-duplicated union of the feature's
// test-like declared artifacts, its plan-hint-declared tests, and
// test-like paths extracted from the text of tasks associated with it.
// De-duplication key is the normalized value; results are sorted.
func (e *Engine) TestsForFeature(st *graph.Store, featureID string, ctx *Context) []string {
	f, ok := st.Feature(featureID)
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		nv := Normalize(v)
		if nv == "" || seen[nv] {
			return
		}
		seen[nv] = true
		out = append(out, nv)
	}

	for _, v := range declaredValues(f) {
		if IsTestLike(v) {
			add(v)
		}
	}
	for _, t := range ctx.hint(featureID).Tests {
		add(t)
	}
	keywords := featureKeywords(f)
	for _, task := range ctx.tasks() {
		if !taskAssociatedWithFeature(task, f, keywords) {
			continue
		}
		for _, p := range ExtractTestPaths(task.fullText()) {
			add(p)
		}
	}

	sort.Strings(out)
	return out
}

// taskAssociatedWithFeature decides whether a task plausibly concerns
// the feature: it mentions the feature's id or name, or its text
// overlaps the feature's keywords.
func taskAssociatedWithFeature(task Task, f *types.FeatureNode, keywords []string) bool {
	text := Normalize(task.fullText())
	if text == "" {
		return false
	}
	if id := Normalize(f.ID); id != "" && strings.Contains(text, id) {
		return true
	}
	if name := Normalize(f.Name); name != "" && strings.Contains(text, name) {
		return true
	}
	return overlap(Tokenize(text), keywords) >= taskAssociationMinOverlap
}

// ImpactedFeaturesByCodeChange aggregates matches across all changed
// paths, accumulating a weighted score per feature. Within one path's
// match list the contribution decays with rank position, so a path's
// best match counts most. This answers "which features does this diff
// touch."
func (e *Engine) ImpactedFeaturesByCodeChange(st *graph.Store, changedPaths []string, ctx *Context) []Match {
	totals := make(map[string]float64)
	direct := make(map[string]bool)
	features := make(map[string]*types.FeatureNode)

	for _, path := range changedPaths {
		combined := e.FeaturesForArtifact(st, path, ctx)
		if IsTestLike(path) {
			for _, m := range e.FeaturesForTest(st, path, ctx) {
				if !containsFeature(combined, m.Feature.ID) {
					combined = append(combined, m)
				}
			}
		}
		for pos, m := range combined {
			id := m.Feature.ID
			totals[id] += m.Score / float64(pos+1)
			direct[id] = direct[id] || m.DirectPlanMatch
			features[id] = m.Feature
		}
	}

	matches := make([]Match, 0, len(totals))
	for id, total := range totals {
		matches = append(matches, Match{
			Feature:         features[id],
			Score:           total,
			DirectPlanMatch: direct[id],
		})
	}
	sortMatches(matches)
	if e.cfg.MaxResults > 0 && len(matches) > e.cfg.MaxResults {
		matches = matches[:e.cfg.MaxResults]
	}
	return matches
}

func containsFeature(matches []Match, id string) bool {
	for _, m := range matches {
		if m.Feature.ID == id {
			return true
		}
	}
	return false
}

// sortMatches orders by descending score, ties broken by feature name,
// then id for full determinism.
func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Feature.Name != matches[j].Feature.Name {
			return matches[i].Feature.Name < matches[j].Feature.Name
		}
		return matches[i].Feature.ID < matches[j].Feature.ID
	})
}
