// Package impact computes which features are affected by a prospective
// change to one feature, with an ordinal severity classification.
package impact

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/featuregraph/fg/internal/graph"
)

// Severity classifies how widely a change ripples through the graph.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// severityFor maps neighbor count to severity. The ladder is monotonic:
// more neighbors never lowers severity.
func severityFor(neighbors int) Severity {
	switch {
	case neighbors == 0:
		return SeverityNone
	case neighbors <= 2:
		return SeverityLow
	case neighbors <= 5:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// Report is the result of one impact analysis.
type Report struct {
	FeatureID        string    `json:"feature_id"`
	ChangeType       string    `json:"change_type"`
	TargetFeatureID  string    `json:"target_feature_id,omitempty"`
	AffectedFeatures []string  `json:"affected_features"`
	Severity         Severity  `json:"severity"`
	Description      string    `json:"description"`
	AnalyzedAt       time.Time `json:"analyzed_at"`
}

// Analyzer answers impact queries and caches results so repeated
// questions about the same hypothetical change are cheap, and so a UI
// can show the history of analyzed-but-not-applied changes.
type Analyzer struct {
	mu    sync.Mutex
	cache map[string]*Report
}

// NewAnalyzer creates an analyzer with an empty cache.
func NewAnalyzer() *Analyzer {
	return &Analyzer{cache: make(map[string]*Report)}
}

// cacheKey builds the memoization key: "{changeType}-{featureId}" plus
// "-{targetFeatureId}" when a target is involved.
func cacheKey(featureID, changeType, targetFeatureID string) string {
	key := changeType + "-" + featureID
	if targetFeatureID != "" {
		key += "-" + targetFeatureID
	}
	return key
}

// Analyze computes the affected feature set for a prospective change.
// The affected set is the feature's both-direction neighborhood;
// unknown feature ids yield an empty set rather than an error.
func (a *Analyzer) Analyze(st *graph.Store, featureID, changeType, targetFeatureID string) *Report {
	key := cacheKey(featureID, changeType, targetFeatureID)

	a.mu.Lock()
	if cached, ok := a.cache[key]; ok {
		a.mu.Unlock()
		return cached
	}
	a.mu.Unlock()

	affected := st.NeighborIDs(featureID, graph.DirectionBoth)
	if affected == nil {
		affected = []string{}
	}

	report := &Report{
		FeatureID:        featureID,
		ChangeType:       changeType,
		TargetFeatureID:  targetFeatureID,
		AffectedFeatures: affected,
		Severity:         severityFor(len(affected)),
		Description:      describe(featureID, changeType, affected),
		AnalyzedAt:       time.Now(),
	}

	a.mu.Lock()
	a.cache[key] = report
	a.mu.Unlock()
	return report
}

// History returns all cached reports, oldest first.
func (a *Analyzer) History() []*Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Report, 0, len(a.cache))
	for _, r := range a.cache {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AnalyzedAt.Equal(out[j].AnalyzedAt) {
			return out[i].AnalyzedAt.Before(out[j].AnalyzedAt)
		}
		return cacheKey(out[i].FeatureID, out[i].ChangeType, out[i].TargetFeatureID) <
			cacheKey(out[j].FeatureID, out[j].ChangeType, out[j].TargetFeatureID)
	})
	return out
}

// describe renders the human-readable impact sentence. The empty case
// states explicitly that there is no direct impact rather than omitting
// the description.
func describe(featureID, changeType string, affected []string) string {
	if len(affected) == 0 {
		return fmt.Sprintf("A %s change to %q has no direct impact on other features.", changeType, featureID)
	}
	return fmt.Sprintf("A %s change to %q directly impacts %d feature(s): %s.",
		changeType, featureID, len(affected), strings.Join(affected, ", "))
}
