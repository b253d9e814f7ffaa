package heuristics

import (
	"strings"

	"github.com/featuregraph/fg/internal/types"
)

// Signal weights. The exact values are tuning constants; what matters
// is the rank order they impose: an exact artifact match always beats a
// substring match, which beats keyword overlap, which beats task-text
// association. Plan hints sit between exact and keyword so that
// explicitly authored hints outrank incidental token overlap.
const (
	// weightExactArtifact: query equals a declared artifact
	// path/url/name after normalization.
	weightExactArtifact = 100.0

	// weightSubstringArtifact: query and artifact value contain one
	// another.
	weightSubstringArtifact = 40.0

	// weightPlanArtifact: an externally authored plan hint lists the
	// query as an artifact or test of this feature.
	weightPlanArtifact = 45.0

	// weightPlanKeyword: plan hint keywords overlap the query tokens.
	weightPlanKeyword = 20.0

	// weightKeywordToken: per overlapping token between the query and
	// the feature's derived keywords, capped at maxKeywordScore.
	weightKeywordToken = 6.0
	maxKeywordScore    = 24.0

	// weightTaskToken: per overlapping token between an associated
	// task's text and the feature's keywords, capped at maxTaskScore.
	// Tie-breaker/fallback signal.
	weightTaskToken = 2.0
	maxTaskScore    = 10.0

	// weightTestLikeBonus: added when resolving a test query and the
	// feature declares a test-like artifact. Never applied to generic
	// artifact queries.
	weightTestLikeBonus = 15.0

	// planMatchFloor keeps directly hinted features in the result set
	// even when textual heuristics score them at zero.
	planMatchFloor = 10.0

	// minContainmentLen guards substring matching against trivial
	// values ("a", "ts") matching everything.
	minContainmentLen = 4

	// taskAssociationMinOverlap is the token overlap at which a task is
	// considered associated with a feature.
	taskAssociationMinOverlap = 2
)

// Score computes the aggregate heuristic score of a feature for a
// query. It is a pure function of its inputs. The returned bool is the
// direct-plan-match flag: true when a plan hint explicitly lists the
// query for this feature.
func Score(f *types.FeatureNode, query string, ctx *Context, testQuery bool) (float64, bool) {
	q := Normalize(query)
	if q == "" || f == nil {
		return 0, false
	}
	qTokens := Tokenize(q)

	// Test queries are additionally compared with their test markers
	// stripped, so "login.test.ts" can hit the artifact "login.ts".
	variants := []string{q}
	if testQuery {
		if stripped := StripTestMarkers(q); stripped != q {
			variants = append(variants, stripped)
		}
	}

	var score float64
	artifactValues := declaredValues(f)

	if matchesExact(artifactValues, variants) {
		score += weightExactArtifact
	} else if matchesContainment(artifactValues, variants) {
		score += weightSubstringArtifact
	}

	direct := false
	hint := ctx.hint(f.ID)
	if hintValueMatches(hint, variants) {
		score += weightPlanArtifact
		direct = true
	}
	if len(hint.Keywords) > 0 && overlap(Tokenize(strings.Join(hint.Keywords, " ")), qTokens) > 0 {
		score += weightPlanKeyword
	}

	keywords := featureKeywords(f)
	if n := overlap(keywords, qTokens); n > 0 {
		score += minFloat(float64(n)*weightKeywordToken, maxKeywordScore)
	}

	score += taskAssociationScore(keywords, q, qTokens, ctx.tasks())

	if testQuery && score > 0 && hasTestLikeArtifact(artifactValues) {
		score += weightTestLikeBonus
	}

	if direct && score < planMatchFloor {
		score = planMatchFloor
	}
	return score, direct
}

// declaredValues collects the normalized identity strings of a
// feature's artifacts.
func declaredValues(f *types.FeatureNode) []string {
	var out []string
	for _, ref := range f.Artifacts.Refs() {
		for _, v := range ref.Values() {
			if nv := Normalize(v); nv != "" {
				out = append(out, nv)
			}
		}
	}
	return out
}

func matchesExact(values, variants []string) bool {
	for _, v := range values {
		for _, q := range variants {
			if v == q {
				return true
			}
		}
	}
	return false
}

func matchesContainment(values, variants []string) bool {
	for _, v := range values {
		if len(v) < minContainmentLen {
			continue
		}
		for _, q := range variants {
			if len(q) < minContainmentLen {
				continue
			}
			if strings.Contains(v, q) || strings.Contains(q, v) {
				return true
			}
		}
	}
	return false
}

func hintValueMatches(hint PlanHint, variants []string) bool {
	for _, declared := range append(append([]string{}, hint.Artifacts...), hint.Tests...) {
		nd := Normalize(declared)
		if nd == "" {
			continue
		}
		for _, q := range variants {
			if nd == q {
				return true
			}
			if len(nd) >= minContainmentLen && len(q) >= minContainmentLen &&
				(strings.Contains(nd, q) || strings.Contains(q, nd)) {
				return true
			}
		}
	}
	return false
}

// featureKeywords derives the comparison token set from a feature's
// id, name, group, description, and string-valued metadata.
func featureKeywords(f *types.FeatureNode) []string {
	parts := []string{f.ID, f.Name, f.Group, f.Description}
	for _, v := range f.Metadata {
		switch val := v.(type) {
		case string:
			parts = append(parts, val)
		case []any:
			for _, item := range val {
				if s, ok := item.(string); ok {
					parts = append(parts, s)
				}
			}
		}
	}
	return Tokenize(strings.Join(parts, " "))
}

// taskAssociationScore adds the low-weight task-plan signal: tasks
// whose text relates to the query contribute their keyword overlap
// with the feature.
func taskAssociationScore(keywords []string, q string, qTokens []string, tasks []Task) float64 {
	var score float64
	for _, task := range tasks {
		text := Normalize(task.fullText())
		if text == "" {
			continue
		}
		tTokens := Tokenize(text)
		related := strings.Contains(text, q) || overlap(tTokens, qTokens) >= taskAssociationMinOverlap
		if !related {
			continue
		}
		if n := overlap(tTokens, keywords); n > 0 {
			score += minFloat(float64(n)*weightTaskToken, maxTaskScore)
		}
	}
	return score
}

func hasTestLikeArtifact(values []string) bool {
	for _, v := range values {
		if IsTestLike(v) {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
