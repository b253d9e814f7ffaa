package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Src/Auth/Login.TS  ", "src/auth/login.ts"},
		{`src\auth\login.ts`, "src/auth/login.ts"},
		{"multiple   spaces\there", "multiple spaces here"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"splits on separators", "src/auth/login.ts", []string{"auth", "login"}},
		{"drops stopwords and short tokens", "the main test for a lib", nil},
		{"deduplicates", "auth auth login auth", []string{"auth", "login"}},
		{"keeps digits", "oauth2 v2 handler", []string{"oauth2", "handler"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestIsTestLike(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"src/auth/login.test.ts", true},
		{"src/auth/login.spec.js", true},
		{"internal/graph/store_test.go", true},
		{"tests/checkout_flow.py", true},
		{"cypress/e2e/login.cy.ts", true},
		{"qa/smoke.sh", true},
		{"src/auth/login.ts", false},
		{"docs/testing-guide.md", false},
		{"src/contest/entry.go", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTestLike(tt.in), "IsTestLike(%q)", tt.in)
	}
}

func TestStripTestMarkers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"src/auth/login.test.ts", "src/auth/login.ts"},
		{"src/auth/login.spec.ts", "src/auth/login.ts"},
		{"internal/graph/store_test.go", "internal/graph/store.go"},
		{"src/__tests__/login.ts", "src/login.ts"},
		{"app/tests/checkout.py", "app/checkout.py"},
		{"src/auth/login.ts", "src/auth/login.ts"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripTestMarkers(tt.in), "StripTestMarkers(%q)", tt.in)
	}
}

func TestExtractTestPaths(t *testing.T) {
	text := "Add coverage in tests/auth_flow.py and update src/auth/login.ts, then check cypress/e2e/login.cy.ts."
	got := ExtractTestPaths(text)
	assert.Equal(t, []string{"cypress/e2e/login.cy.ts", "tests/auth_flow.py"}, got)
}

func TestExtractTestPathsIgnoresPlainWords(t *testing.T) {
	assert.Empty(t, ExtractTestPaths("run the test suite before merging"))
}
