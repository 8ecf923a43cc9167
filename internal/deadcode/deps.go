package deadcode

import (
	"sort"

	"deadwood/internal/modules"
)

// DependencyStatus is one manifest entry with its usage flag.
type DependencyStatus struct {
	Name    string                    `json:"name" yaml:"name"`
	Version string                    `json:"version" yaml:"version"`
	Section modules.DependencySection `json:"section" yaml:"section"`
	Used    bool                      `json:"used" yaml:"used"`
}

// DepsOptions configures dependency tracking.
type DepsOptions struct {
	// ImplyTypes marks @types/x used whenever x is.
	ImplyTypes bool

	// IgnoreTestUsage stops imports from test files counting as usage.
	IgnoreTestUsage bool
}

// DepsResult is the output of dependency tracking. All lists are sorted by name.
type DepsResult struct {
	Dependencies []DependencyStatus `json:"dependencies" yaml:"dependencies"`
	Unused       []DependencyStatus `json:"unused" yaml:"unused"`

	// Undeclared lists packages imported but missing from a found manifest.
	Undeclared []string `json:"undeclared,omitempty" yaml:"undeclared,omitempty"`
}

// UnusedNames returns the names of unused dependencies.
func (r *DepsResult) UnusedNames() []string {
	names := make([]string, 0, len(r.Unused))
	for _, d := range r.Unused {
		names = append(names, d.Name)
	}
	return names
}

// TrackDependencies marks every manifest entry referenced by a bare import
// of any module and reports the rest as unused. Runtime builtins imported
// without "node:" mark a same-named entry used but are never undeclared.
func TrackDependencies(graph *modules.Graph, manifest *modules.Manifest, opts DepsOptions) *DepsResult {
	referenced := make(map[string]bool)
	used := make(map[string]bool)
	markUsed := func(pkg string) {
		used[pkg] = true
		if opts.ImplyTypes {
			if types := modules.TypesPackageName(pkg); types != "" {
				used[types] = true
			}
		}
	}
	for _, m := range graph.Modules() {
		if opts.IgnoreTestUsage && IsTestFile(m.Path) {
			continue
		}
		for _, pkg := range m.Packages {
			referenced[pkg] = true
			markUsed(pkg)
		}
		for _, pkg := range m.Builtins {
			markUsed(pkg)
		}
	}

	result := &DepsResult{
		Dependencies: []DependencyStatus{},
		Unused:       []DependencyStatus{},
	}
	declared := make(map[string]bool)
	if manifest != nil {
		for _, d := range manifest.Dependencies {
			declared[d.Name] = true
			status := DependencyStatus{
				Name:    d.Name,
				Version: d.Version,
				Section: d.Section,
				Used:    used[d.Name],
			}
			result.Dependencies = append(result.Dependencies, status)
			if !status.Used {
				result.Unused = append(result.Unused, status)
			}
		}
	}

	if manifest != nil && manifest.Found {
		for pkg := range referenced {
			if !declared[pkg] {
				result.Undeclared = append(result.Undeclared, pkg)
			}
		}
		sort.Strings(result.Undeclared)
	}

	byName := func(list []DependencyStatus) {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	byName(result.Dependencies)
	byName(result.Unused)
	return result
}
