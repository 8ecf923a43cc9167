// Package deadcode finds exports that no module consumes and declared
// dependencies that no module imports.
package deadcode

import (
	"fmt"
	"sort"

	"deadwood/internal/modules"
)

// DeadExport is one export nothing in the tree uses.
type DeadExport struct {
	// Kind is the declaration kind (function, class, value, ...).
	Kind modules.ExportKind `json:"kind" yaml:"kind"`

	// Name is the display name; "default" for anonymous default exports.
	Name string `json:"name" yaml:"name"`

	// External is the name importers would use.
	External string `json:"external" yaml:"external"`

	// Path is relative to the project directory.
	Path string `json:"path" yaml:"path"`

	// Line is where the export is declared.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`
}

// String renders the report line "<kind> <name> in: <path>".
func (d DeadExport) String() string {
	return fmt.Sprintf("%s %s in: %s", d.Kind, d.Name, d.Path)
}

// Summary provides aggregate statistics.
type Summary struct {
	// Modules is every module in the graph.
	Modules int `json:"modules" yaml:"modules"`

	// Unparsed is modules whose declarations could not be produced.
	Unparsed int `json:"unparsed" yaml:"unparsed"`

	// Exports is every own export analyzed.
	Exports int `json:"exports" yaml:"exports"`

	// Used is exports reached by at least one import.
	Used int `json:"used" yaml:"used"`

	// Dead is exports reported.
	Dead int `json:"dead" yaml:"dead"`

	// Kept is unused exports suppressed by the keep file.
	Kept int `json:"kept" yaml:"kept"`

	// Excluded is unused exports in test, generated or excluded files.
	Excluded int `json:"excluded" yaml:"excluded"`

	// ByKind breaks down dead exports by kind.
	ByKind map[string]int `json:"byKind" yaml:"byKind"`
}

// Result is the output of dead export analysis.
type Result struct {
	DeadExports []DeadExport `json:"deadExports" yaml:"deadExports"`
	Summary     Summary      `json:"summary" yaml:"summary"`
}

// Options configures the analyzer.
type Options struct {
	// Entrypoints are doublestar globs over report paths; matching modules
	// are public API and their whole namespace counts as used.
	Entrypoints []string

	// Exclude are doublestar globs over report paths never reported.
	Exclude []string

	// Keep suppresses reporting of listed exports.
	Keep *modules.KeepFile

	// IgnoreTestUsage stops imports from test files counting as usage.
	IgnoreTestUsage bool
}

// SortDeadExports orders by path, then name, then line.
func SortDeadExports(items []DeadExport) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Line < b.Line
	})
}
