package query

import (
	"strings"

	"deadwood/internal/deadcode"
	"deadwood/internal/modules"
)

// Timings records how long each phase of a run took.
type Timings struct {
	DiscoverMs int64 `json:"discoverMs" yaml:"discoverMs"`
	ParseMs    int64 `json:"parseMs" yaml:"parseMs"`
	BuildMs    int64 `json:"buildMs" yaml:"buildMs"`
	AnalyzeMs  int64 `json:"analyzeMs" yaml:"analyzeMs"`
	TotalMs    int64 `json:"totalMs" yaml:"totalMs"`
}

// Report is the complete output of one run.
type Report struct {
	// RunID identifies this invocation in structured output.
	RunID     string `json:"runId" yaml:"runId"`
	StartedAt string `json:"startedAt" yaml:"startedAt"`

	// Root is the scanned directory relative to the project directory.
	Root  string `json:"root" yaml:"root"`
	Files int    `json:"files" yaml:"files"`

	DeadExports []deadcode.DeadExport `json:"deadExports" yaml:"deadExports"`
	Summary     deadcode.Summary      `json:"summary" yaml:"summary"`

	Dependencies  *deadcode.DepsResult `json:"dependencies" yaml:"dependencies"`
	ManifestFound bool                 `json:"manifestFound" yaml:"manifestFound"`

	Diagnostics []modules.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Timings     Timings              `json:"timings" yaml:"timings"`
}

// DeadLines returns the dead export report lines in order.
func (r *Report) DeadLines() []string {
	lines := make([]string, 0, len(r.DeadExports))
	for _, d := range r.DeadExports {
		lines = append(lines, d.String())
	}
	return lines
}

// UnusedDependencies returns the names of unused dependencies in order.
func (r *Report) UnusedDependencies() []string {
	if r.Dependencies == nil {
		return []string{}
	}
	return r.Dependencies.UnusedNames()
}

// HasFindings reports whether the run found dead exports or unused
// dependencies.
func (r *Report) HasFindings() bool {
	return len(r.DeadExports) > 0 || (r.Dependencies != nil && len(r.Dependencies.Unused) > 0)
}

// Text renders the dead export lines followed by one
// "unused dependency: <name>" line per unused dependency. Nothing
// run-specific is included, so unchanged input renders identical bytes.
func (r *Report) Text() string {
	var b strings.Builder
	for _, line := range r.DeadLines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, name := range r.UnusedDependencies() {
		b.WriteString("unused dependency: ")
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return b.String()
}
