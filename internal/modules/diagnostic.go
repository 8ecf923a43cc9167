package modules

import "sort"

// DiagnosticKind classifies a non-fatal finding recorded during a run
type DiagnosticKind string

const (
	DiagUnresolvedImport DiagnosticKind = "unresolved-import"
	DiagOpaqueNamespace  DiagnosticKind = "opaque-namespace"
	DiagParseFailed      DiagnosticKind = "parse-failed"
	DiagDuplicateExport  DiagnosticKind = "duplicate-export"
)

// Diagnostic is one warning attached to a file
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind" yaml:"kind"`
	Path      string         `json:"path" yaml:"path"`
	Line      int            `json:"line,omitempty" yaml:"line,omitempty"`
	Specifier string         `json:"specifier,omitempty" yaml:"specifier,omitempty"`
	Message   string         `json:"message,omitempty" yaml:"message,omitempty"`
}

// SortDiagnostics orders diagnostics by path, line, kind, then specifier
func SortDiagnostics(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Specifier < b.Specifier
	})
}
