package deadcode

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar"

	"deadwood/internal/paths"
)

// ExclusionRules determines which files are never reported and which are
// entrypoints.
type ExclusionRules struct {
	exclude     []string
	entrypoints []string
}

// NewExclusionRules creates exclusion rules with the given patterns.
// Patterns are cleaned so "./src/index.ts" matches the report path
// "src/index.ts".
func NewExclusionRules(exclude, entrypoints []string) *ExclusionRules {
	return &ExclusionRules{
		exclude:     cleanPatterns(exclude),
		entrypoints: cleanPatterns(entrypoints),
	}
}

func cleanPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		out = append(out, paths.Clean(p))
	}
	return out
}

// ShouldExclude returns a reason if exports of the file at reportPath must
// not be reported, or empty string if not.
func (r *ExclusionRules) ShouldExclude(reportPath string) string {
	// 1. Test files exercise other code
	if IsTestFile(reportPath) {
		return "test file"
	}

	// 2. Generated code is not edited by hand
	if isGeneratedFile(reportPath) {
		return "generated file"
	}

	// 3. User-defined exclusion patterns
	for _, pattern := range r.exclude {
		if matchGlob(pattern, reportPath) {
			return "matches exclusion pattern: " + pattern
		}
	}

	return ""
}

// IsEntrypoint reports whether the file at reportPath is public API.
func (r *ExclusionRules) IsEntrypoint(reportPath string) bool {
	for _, pattern := range r.entrypoints {
		if matchGlob(pattern, reportPath) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, p string) bool {
	matched, err := doublestar.Match(pattern, p)
	return err == nil && matched
}

// isGeneratedFile checks if a file is likely generated.
func isGeneratedFile(p string) bool {
	generatedPatterns := []string{
		".generated.",
		".gen.",
		"__generated__/",
		"/generated/",
		".pb.",
		"_pb.",
	}

	pathLower := strings.ToLower(p)
	if strings.HasPrefix(pathLower, "generated/") {
		return true
	}
	for _, pattern := range generatedPatterns {
		if strings.Contains(pathLower, pattern) {
			return true
		}
	}
	return false
}

// IsTestFile checks if a file path is a test file.
func IsTestFile(p string) bool {
	base := path.Base(p)
	if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}

	// Test directories
	for _, dir := range []string{"__tests__", "__mocks__"} {
		if strings.HasPrefix(p, dir+"/") || strings.Contains(p, "/"+dir+"/") {
			return true
		}
	}
	return false
}
