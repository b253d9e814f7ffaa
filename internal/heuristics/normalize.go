// Package heuristics maps free-text artifact paths, test paths, and
// task plans onto candidate features using layered lexical signals.
package heuristics

import (
	"sort"
	"strings"
)

// minTokenLen is the shortest token considered meaningful for keyword
// overlap. Shorter tokens ("a", "of", "ts") are mostly noise.
const minTokenLen = 3

// stopwords are generic tokens excluded from keyword overlap because
// they match almost everything in a software project.
var stopwords = map[string]bool{
	"feature": true,
	"test":    true,
	"tests":   true,
	"src":     true,
	"the":     true,
	"and":     true,
	"for":     true,
	"with":    true,
	"lib":     true,
	"pkg":     true,
	"main":    true,
	"index":   true,
}

// testKeywords classify a token as test-related.
var testKeywords = map[string]bool{
	"test":        true,
	"tests":       true,
	"spec":        true,
	"specs":       true,
	"e2e":         true,
	"unit":        true,
	"qa":          true,
	"cypress":     true,
	"integration": true,
}

// testFragments classify a path as test-related by shape.
var testFragments = []string{
	".test.",
	".spec.",
	"_test.",
	".e2e.",
	"/tests/",
	"/test/",
	"__tests__",
}

// Normalize lower-cases, converts backslashes to forward slashes, and
// collapses runs of whitespace to single spaces. Every comparison in
// this package happens on normalized values.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "\\", "/")
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits a normalized string on non-alphanumeric boundaries,
// drops tokens shorter than minTokenLen and stop-words, and
// deduplicates. The result order is first occurrence.
func Tokenize(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range splitTokens(Normalize(s)) {
		if len(tok) < minTokenLen || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// splitTokens splits on every non-alphanumeric rune, keeping short
// tokens. Used directly for test-keyword checks where two-letter
// tokens like "qa" matter.
func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
}

// IsTestLike reports whether a normalized string looks test-related:
// it contains a test-path fragment or tokenizes to a test keyword.
func IsTestLike(s string) bool {
	s = Normalize(s)
	for _, frag := range testFragments {
		if strings.Contains(s, frag) {
			return true
		}
	}
	for _, tok := range splitTokens(s) {
		if testKeywords[tok] {
			return true
		}
	}
	return false
}

// StripTestMarkers removes test-path fragments from a normalized path
// so that "src/auth/login.test.ts" can be compared against the declared
// artifact "src/auth/login.ts".
func StripTestMarkers(s string) string {
	s = Normalize(s)
	replacer := strings.NewReplacer(
		".test.", ".",
		".spec.", ".",
		"_test.", ".",
		".e2e.", ".",
		"__tests__/", "",
		"/tests/", "/",
		"/test/", "/",
	)
	return replacer.Replace(s)
}

// ExtractTestPaths pulls test-like path fragments out of free text
// (task descriptions, plan steps). A word qualifies when it contains a
// path or file separator and classifies as test-like.
func ExtractTestPaths(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, ".,;:()[]{}'\"`")
		norm := Normalize(word)
		if norm == "" || seen[norm] {
			continue
		}
		if !strings.ContainsAny(norm, "/.") {
			continue
		}
		if IsTestLike(norm) {
			seen[norm] = true
			out = append(out, norm)
		}
	}
	sort.Strings(out)
	return out
}

// overlap counts how many tokens the two sets share.
func overlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, tok := range a {
		set[tok] = true
	}
	count := 0
	for _, tok := range b {
		if set[tok] {
			count++
		}
	}
	return count
}
