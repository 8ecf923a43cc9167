package deadcode

import (
	"deadwood/internal/logging"
	"deadwood/internal/modules"
)

// Analyzer marks used exports over an immutable module graph and reports
// the rest. Every traversal is bounded by a visited set, so re-export
// cycles terminate.
type Analyzer struct {
	graph      *modules.Graph
	opts       Options
	exclusions *ExclusionRules
	logger     *logging.Logger
}

// NewAnalyzer creates a new dead export analyzer.
func NewAnalyzer(graph *modules.Graph, opts Options, logger *logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Analyzer{
		graph:      graph,
		opts:       opts,
		exclusions: NewExclusionRules(opts.Exclude, opts.Entrypoints),
		logger:     logger,
	}
}

// Mark runs the reachability pass and returns the used set.
func (a *Analyzer) Mark() *Usage {
	u := NewUsage()

	entrypoints := 0
	for _, m := range a.graph.Modules() {
		if a.exclusions.IsEntrypoint(m.Path) {
			entrypoints++
			a.markNamespace(u, m.ID)
		}
	}

	for _, m := range a.graph.Modules() {
		if !m.Parsed {
			continue
		}
		if a.opts.IgnoreTestUsage && IsTestFile(m.Path) {
			continue
		}
		for _, edge := range m.Imports {
			for _, sym := range edge.Symbols {
				a.markSymbol(u, edge.Target, sym)
			}
		}
	}

	a.logger.Debug("Reachability pass completed", map[string]interface{}{
		"modules":     a.graph.Len(),
		"entrypoints": entrypoints,
		"used":        u.Len(),
	})
	return u
}

func (a *Analyzer) markSymbol(u *Usage, target modules.ModuleID, sym modules.ImportedSymbol) {
	if sym.Kind != modules.ImportNamespace {
		a.lookup(u, target, sym.Name, make(map[ExportRef]bool))
		return
	}
	if sym.Opaque {
		a.markNamespace(u, target)
		return
	}
	for _, name := range sym.Accesses {
		a.lookup(u, target, name, make(map[ExportRef]bool))
	}
}

// lookup marks the export reachable as name from module id: an own export
// first, then each re-export in declaration order. The first match wins.
// visited is keyed by (module, name) because renaming re-exports can visit
// one module under several names.
func (a *Analyzer) lookup(u *Usage, id modules.ModuleID, name string, visited map[ExportRef]bool) bool {
	key := ExportRef{Module: id, Name: name}
	if visited[key] {
		return false
	}
	visited[key] = true

	m, ok := a.graph.Module(id)
	if !ok || !m.Parsed {
		return false
	}

	if e, ok := m.Export(name); ok {
		u.Mark(ExportRef{Module: id, Name: e.External})
		return true
	}

	for _, re := range m.ReExports {
		switch re.Kind {
		case modules.ReExportNamed:
			for _, spec := range re.Specifiers {
				if spec.Exported == name && a.lookup(u, re.Target, spec.Local, visited) {
					return true
				}
			}
		case modules.ReExportNamespace:
			if re.Alias == name {
				a.markNamespace(u, re.Target)
				return true
			}
		case modules.ReExportAll:
			// export * never forwards a default export
			if name != modules.DefaultExportName && a.lookup(u, re.Target, name, visited) {
				return true
			}
		}
	}
	return false
}

// markNamespace marks every export of root and of every module reachable
// from it through re-exports.
func (a *Analyzer) markNamespace(u *Usage, root modules.ModuleID) {
	visited := make(map[modules.ModuleID]bool)
	queue := []modules.ModuleID{root}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		m, ok := a.graph.Module(id)
		if !ok || !m.Parsed {
			continue
		}
		for _, e := range m.OwnExports {
			u.Mark(ExportRef{Module: id, Name: e.External})
		}
		queue = append(queue, m.ReExportChildren()...)
	}
}

// Analyze performs dead export detection.
func (a *Analyzer) Analyze() *Result {
	u := a.Mark()

	result := &Result{
		DeadExports: []DeadExport{},
		Summary:     Summary{ByKind: make(map[string]int)},
	}

	for _, m := range a.graph.Modules() {
		result.Summary.Modules++
		if !m.Parsed {
			result.Summary.Unparsed++
			continue
		}

		reason := a.exclusions.ShouldExclude(m.Path)
		for _, e := range m.OwnExports {
			result.Summary.Exports++
			if u.IsUsed(ExportRef{Module: m.ID, Name: e.External}) {
				result.Summary.Used++
				continue
			}
			if reason != "" {
				result.Summary.Excluded++
				continue
			}
			if a.opts.Keep.Keeps(m.Path, e.External) {
				result.Summary.Kept++
				continue
			}

			result.DeadExports = append(result.DeadExports, DeadExport{
				Kind:     e.Kind,
				Name:     e.Name,
				External: e.External,
				Path:     m.Path,
				Line:     e.Line,
			})
			result.Summary.ByKind[string(e.Kind)]++
		}
	}

	SortDeadExports(result.DeadExports)
	result.Summary.Dead = len(result.DeadExports)

	a.logger.Info("Dead export analysis completed", map[string]interface{}{
		"exports": result.Summary.Exports,
		"dead":    result.Summary.Dead,
		"kept":    result.Summary.Kept,
	})
	return result
}
