package testutil

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

// DefaultNormalizer drops run-specific fields and rewrites the fixture root.
type DefaultNormalizer struct{}

// Normalize applies all normalization rules for stable golden comparison.
// This is called before both compare AND update operations.
func (n *DefaultNormalizer) Normalize(t *testing.T, fixture *FixtureContext, data any) any {
	t.Helper()

	// Deep copy via JSON round-trip to avoid modifying original
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal data for normalization: %v", err)
	}

	var normalized any
	if err := json.Unmarshal(jsonBytes, &normalized); err != nil {
		t.Fatalf("Failed to unmarshal data for normalization: %v", err)
	}

	root := ""
	if fixture != nil {
		root = strings.ReplaceAll(fixture.Root, "\\", "/")
	}
	return n.normalizeValue(normalized, root)
}

func (n *DefaultNormalizer) normalizeValue(v any, fixtureRoot string) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, item := range val {
			if isVolatileField(k) {
				continue
			}
			result[k] = n.normalizeValue(item, fixtureRoot)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = n.normalizeValue(item, fixtureRoot)
		}
		return result
	case string:
		s := strings.ReplaceAll(val, "\\", "/")
		if fixtureRoot != "" {
			s = strings.ReplaceAll(s, fixtureRoot, "<fixture>")
		}
		return s
	default:
		return v
	}
}

func isVolatileField(name string) bool {
	switch name {
	case "runId", "startedAt", "timings":
		return true
	}
	return strings.HasSuffix(name, "Ms")
}

// MarshalNormalized normalizes data and marshals it to stable JSON bytes
// with 2-space indentation and a trailing newline.
func MarshalNormalized(t *testing.T, fixture *FixtureContext, data any) []byte {
	t.Helper()

	normalizer := &DefaultNormalizer{}
	normalized := normalizer.Normalize(t, fixture, data)

	// encoding/json sorts map keys
	out, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal normalized data: %v", err)
	}
	return append(out, '\n')
}

// DeepEqual compares two values for equality, ignoring volatile fields.
func DeepEqual(t *testing.T, fixture *FixtureContext, a, b any) bool {
	t.Helper()

	normalizer := &DefaultNormalizer{}
	return reflect.DeepEqual(normalizer.Normalize(t, fixture, a), normalizer.Normalize(t, fixture, b))
}
