//go:build cgo

package symbols

import (
	sitter "github.com/smacker/go-tree-sitter"

	"deadwood/internal/modules"
)

// export converts one export statement. Exports of imported bindings are
// recorded as re-exports of their source; "export =" and
// "export as namespace" are not ES exports and are skipped.
func (w *walker) export(stmt *sitter.Node, decls *modules.FileDeclarations) {
	ln := line(stmt)
	clause := namedChildOfType(stmt, "export_clause")

	if src, ok := w.stringValue(stmt.ChildByFieldName("source")); ok {
		if clause != nil {
			decls.ReExports = append(decls.ReExports, modules.ExportFrom{
				Source:     src,
				Specifiers: w.exportSpecifiers(clause),
				Line:       ln,
			})
			return
		}
		all := modules.ExportAll{Source: src, Line: ln}
		if ns := namedChildOfType(stmt, "namespace_export"); ns != nil && ns.NamedChildCount() > 0 {
			all.Alias = w.moduleExportName(ns.NamedChild(0))
		}
		decls.ReExports = append(decls.ReExports, all)
		return
	}

	decl := stmt.ChildByFieldName("declaration")
	if childOfType(stmt, "default") != nil {
		w.defaultExport(decl, stmt.ChildByFieldName("value"), ln, decls)
		return
	}
	if decl != nil {
		for _, d := range w.declared(decl) {
			decls.Exports = append(decls.Exports, modules.NamedExport{Name: d.name, Kind: d.kind, Line: ln, Namespace: d.namespace})
		}
		return
	}
	if clause != nil {
		w.exportList(clause, ln, decls)
	}
}

func (w *walker) defaultExport(decl, value *sitter.Node, ln int, decls *modules.FileDeclarations) {
	d := modules.DefaultExport{Kind: modules.KindValue, Line: ln}
	target := decl
	if target == nil {
		target = value
	}
	if target == nil {
		decls.Exports = append(decls.Exports, d)
		return
	}

	switch target.Type() {
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "generator_function", "arrow_function":
		d.Kind = modules.KindFunction
	case "class_declaration", "abstract_class_declaration", "class":
		d.Kind = modules.KindClass
	case "interface_declaration":
		d.Kind = modules.KindInterface
	case "identifier":
		local := w.text(target)
		if b, ok := w.bindings[local]; ok {
			w.reExportBinding(b, modules.DefaultExportName, ln, decls)
			return
		}
		d.Local = local
		if k, ok := w.kinds[local]; ok {
			d.Kind = k
		}
		decls.Exports = append(decls.Exports, d)
		return
	}

	if name := target.ChildByFieldName("name"); name != nil {
		d.Local = w.text(name)
	}
	decls.Exports = append(decls.Exports, d)
}

func (w *walker) exportList(clause *sitter.Node, ln int, decls *modules.FileDeclarations) {
	list := modules.ExportList{Kinds: make(map[string]modules.ExportKind), Line: ln}
	for _, spec := range w.exportSpecifiers(clause) {
		if b, ok := w.bindings[spec.Local]; ok {
			w.reExportBinding(b, spec.Exported, ln, decls)
			continue
		}
		list.Specifiers = append(list.Specifiers, spec)
		if k, ok := w.kinds[spec.Local]; ok {
			list.Kinds[spec.Local] = k
		}
	}
	if len(list.Specifiers) > 0 {
		decls.Exports = append(decls.Exports, list)
	}
}

func (w *walker) reExportBinding(b importBinding, exported string, ln int, decls *modules.FileDeclarations) {
	if b.namespace {
		decls.ReExports = append(decls.ReExports, modules.ExportAll{Source: b.source, Alias: exported, Line: ln})
		return
	}
	decls.ReExports = append(decls.ReExports, modules.ExportFrom{
		Source:     b.source,
		Specifiers: []modules.ExportSpecifier{{Local: b.imported, Exported: exported}},
		Line:       ln,
	})
}

func (w *walker) exportSpecifiers(clause *sitter.Node) []modules.ExportSpecifier {
	var specs []modules.ExportSpecifier
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		name := spec.ChildByFieldName("name")
		if name == nil {
			continue
		}
		local := w.moduleExportName(name)
		exported := local
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			exported = w.moduleExportName(alias)
		}
		specs = append(specs, modules.ExportSpecifier{Local: local, Exported: exported})
	}
	return specs
}
