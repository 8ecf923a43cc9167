package modules

import (
	"fmt"
	"sort"
	"strings"

	"deadwood/internal/errors"
	"deadwood/internal/logging"
	"deadwood/internal/paths"
)

// FailedFile is a discovered file whose declarations could not be produced
type FailedFile struct {
	ID  ModuleID
	Err error
}

// Graph is the immutable module graph of one run
type Graph struct {
	modules     map[ModuleID]*Module
	order       []*Module
	diagnostics []Diagnostic
}

// Module returns the module with the given id
func (g *Graph) Module(id ModuleID) (*Module, bool) {
	m, ok := g.modules[id]
	return m, ok
}

// Modules returns every module sorted by id
func (g *Graph) Modules() []*Module {
	return g.order
}

// Len returns the number of modules
func (g *Graph) Len() int {
	return len(g.order)
}

// Diagnostics returns build diagnostics in sorted order
func (g *Graph) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(g.diagnostics))
	copy(out, g.diagnostics)
	return out
}

// Builder assembles FileRecords into a Graph, resolving every specifier
// exactly once.
type Builder struct {
	resolver    *Resolver
	displayRoot string
	logger      *logging.Logger
}

// NewBuilder creates a builder. Report paths are made relative to
// displayRoot when it is set.
func NewBuilder(resolver *Resolver, displayRoot string, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if displayRoot != "" {
		if abs, err := paths.Absolute(displayRoot); err == nil {
			displayRoot = abs
		}
	}
	return &Builder{
		resolver:    resolver,
		displayRoot: displayRoot,
		logger:      logger,
	}
}

// DisplayPath returns the canonical report path of id
func (b *Builder) DisplayPath(id ModuleID) string {
	if b.displayRoot == "" {
		return string(id)
	}
	return paths.Relative(b.displayRoot, string(id))
}

// Build produces the graph. Failed files become unparsed modules so that
// imports of them still resolve.
func (b *Builder) Build(records []*FileRecord, failed []FailedFile) *Graph {
	g := &Graph{modules: make(map[ModuleID]*Module, len(records)+len(failed))}

	for _, f := range failed {
		m := &Module{ID: f.ID, Path: b.DisplayPath(f.ID)}
		g.modules[f.ID] = m

		kind := DiagParseFailed
		if errors.Is(f.Err, errors.DuplicateExport) {
			kind = DiagDuplicateExport
		}
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		g.diagnostics = append(g.diagnostics, Diagnostic{Kind: kind, Path: m.Path, Message: msg})
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		m, diags := b.buildModule(rec)
		g.modules[m.ID] = m
		g.diagnostics = append(g.diagnostics, diags...)
	}

	g.order = make([]*Module, 0, len(g.modules))
	for _, m := range g.modules {
		g.order = append(g.order, m)
	}
	sort.Slice(g.order, func(i, j int) bool { return g.order[i].ID < g.order[j].ID })
	SortDiagnostics(g.diagnostics)

	b.logger.Debug("Module graph built", map[string]interface{}{
		"modules":     len(g.order),
		"failed":      len(failed),
		"diagnostics": len(g.diagnostics),
	})
	return g
}

func (b *Builder) buildModule(rec *FileRecord) (*Module, []Diagnostic) {
	m := &Module{
		ID:         rec.ID,
		Path:       b.DisplayPath(rec.ID),
		OwnExports: rec.OwnExports,
		Parsed:     true,
	}

	var diags []Diagnostic
	packages := make(map[string]bool)
	builtins := make(map[string]bool)
	builtin := func(spec string, res Resolution) {
		if !strings.HasPrefix(spec, "node:") {
			builtins[res.Package] = true
		}
	}
	edgeIndex := make(map[ModuleID]int)

	unresolved := func(spec string, line int) {
		diags = append(diags, Diagnostic{
			Kind:      DiagUnresolvedImport,
			Path:      m.Path,
			Line:      line,
			Specifier: spec,
			Message:   fmt.Sprintf("cannot resolve %q", spec),
		})
		b.logger.Debug("Unresolved import", map[string]interface{}{
			"file":      m.Path,
			"specifier": spec,
		})
	}

	for _, ref := range rec.Imports {
		res := b.resolver.Resolve(ref.Specifier, rec.ID)
		if ref.Asset && !res.IsExternal() {
			continue
		}
		switch res.Kind {
		case Local:
			idx, ok := edgeIndex[res.Module]
			if !ok {
				idx = len(m.Imports)
				edgeIndex[res.Module] = idx
				m.Imports = append(m.Imports, ImportEdge{Target: res.Module})
			}
			m.Imports[idx].Symbols = append(m.Imports[idx].Symbols, ref.Symbols...)

			for _, sym := range ref.Symbols {
				if sym.Kind == ImportNamespace && sym.Opaque {
					msg := fmt.Sprintf("namespace %q is used dynamically; every export of the target counts as used", sym.Local)
					if ref.Dynamic && sym.Local == "" {
						msg = "dynamic import; every export of the target counts as used"
					}
					diags = append(diags, Diagnostic{
						Kind:      DiagOpaqueNamespace,
						Path:      m.Path,
						Line:      sym.Line,
						Specifier: ref.Specifier,
						Message:   msg,
					})
				}
			}
		case External:
			packages[res.Package] = true
		case Builtin:
			builtin(ref.Specifier, res)
		case Unresolved:
			unresolved(ref.Specifier, ref.Line)
		}
	}

	for _, ref := range rec.ReExports {
		res := b.resolver.Resolve(ref.Specifier, rec.ID)
		if ref.Asset && !res.IsExternal() {
			continue
		}
		switch res.Kind {
		case Local:
			m.ReExports = append(m.ReExports, ReExport{
				Target:     res.Module,
				Kind:       ref.Kind,
				Specifiers: ref.Specifiers,
				Alias:      ref.Alias,
			})
		case External:
			packages[res.Package] = true
		case Builtin:
			builtin(ref.Specifier, res)
		case Unresolved:
			unresolved(ref.Specifier, ref.Line)
		}
	}

	sort.SliceStable(m.Imports, func(i, j int) bool { return m.Imports[i].Target < m.Imports[j].Target })
	for pkg := range packages {
		m.Packages = append(m.Packages, pkg)
	}
	sort.Strings(m.Packages)
	for pkg := range builtins {
		m.Builtins = append(m.Builtins, pkg)
	}
	sort.Strings(m.Builtins)

	return m, diags
}
