//go:build cgo

package symbols

import (
	sitter "github.com/smacker/go-tree-sitter"

	"deadwood/internal/modules"
)

// imports converts one import statement. "import x = require(...)" is
// treated as a namespace import of the module.
func (w *walker) imports(stmt *sitter.Node) []modules.ImportDecl {
	ln := line(stmt)

	if req := namedChildOfType(stmt, "import_require_clause"); req != nil {
		src, ok := w.stringValue(req.ChildByFieldName("source"))
		if !ok {
			src, ok = w.stringValue(namedChildOfType(req, "string"))
		}
		local := namedChildOfType(req, "identifier")
		if !ok || local == nil {
			return nil
		}
		return []modules.ImportDecl{modules.NamespaceImport{Source: src, Local: w.text(local), Line: ln}}
	}

	src, ok := w.stringValue(stmt.ChildByFieldName("source"))
	if !ok {
		return nil
	}

	var out []modules.ImportDecl
	if clause := namedChildOfType(stmt, "import_clause"); clause != nil {
		for i := 0; i < int(clause.NamedChildCount()); i++ {
			c := clause.NamedChild(i)
			switch c.Type() {
			case "identifier":
				out = append(out, modules.DefaultImport{Source: src, Local: w.text(c), Line: ln})
			case "namespace_import":
				if id := namedChildOfType(c, "identifier"); id != nil {
					out = append(out, modules.NamespaceImport{Source: src, Local: w.text(id), Line: ln})
				}
			case "named_imports":
				if specs := w.importSpecifiers(c); len(specs) > 0 {
					out = append(out, modules.NamedImport{Source: src, Specifiers: specs, Line: ln})
				}
			}
		}
	}
	if len(out) == 0 {
		out = append(out, modules.SideEffectImport{Source: src, Line: ln})
	}
	return out
}

func (w *walker) importSpecifiers(named *sitter.Node) []modules.ImportSpecifier {
	var specs []modules.ImportSpecifier
	for i := 0; i < int(named.NamedChildCount()); i++ {
		spec := named.NamedChild(i)
		if spec.Type() != "import_specifier" {
			continue
		}
		name := spec.ChildByFieldName("name")
		if name == nil {
			continue
		}
		imported := w.moduleExportName(name)
		local := imported
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			local = w.text(alias)
		}
		specs = append(specs, modules.ImportSpecifier{Imported: imported, Local: local})
	}
	return specs
}

// recordBindings remembers the origin of every name an import statement binds.
func (w *walker) recordBindings(stmt *sitter.Node) {
	for _, decl := range w.imports(stmt) {
		switch d := decl.(type) {
		case modules.NamedImport:
			for _, spec := range d.Specifiers {
				w.bindings[spec.Local] = importBinding{source: d.Source, imported: spec.Imported}
			}
		case modules.DefaultImport:
			w.bindings[d.Local] = importBinding{source: d.Source, imported: modules.DefaultExportName}
		case modules.NamespaceImport:
			w.bindings[d.Local] = importBinding{source: d.Source, namespace: true}
		}
	}
}

// dynamicImports finds require("x") and import("x") calls with a literal
// argument anywhere in the file.
func (w *walker) dynamicImports(root *sitter.Node) []modules.ImportDecl {
	var out []modules.ImportDecl
	walk(root, func(n *sitter.Node) bool {
		if n.Type() == "import_statement" {
			return false
		}
		if n.Type() != "call_expression" {
			return true
		}
		fn := n.ChildByFieldName("function")
		args := n.ChildByFieldName("arguments")
		if fn == nil || args == nil || args.NamedChildCount() != 1 {
			return true
		}
		if fn.Type() != "import" && !(fn.Type() == "identifier" && w.text(fn) == "require") {
			return true
		}
		if src, ok := w.stringValue(args.NamedChild(0)); ok {
			out = append(out, modules.DynamicImport{Source: src, Line: line(n)})
		}
		return true
	})
	return out
}

// scanNamespace collects the static member reads on a namespace binding.
// Any other use of the binding, or no use at all, makes it opaque.
func (w *walker) scanNamespace(root *sitter.Node, local string) ([]string, bool) {
	var accesses []string
	opaque := false
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement":
			return false
		case "identifier", "shorthand_property_identifier":
		default:
			return true
		}
		if w.text(n) != local {
			return true
		}

		parent := n.Parent()
		if name, ok := w.staticAccess(parent, n); ok {
			accesses = append(accesses, name)
			return true
		}
		// export { NS } is recorded as export * as NS
		if parent != nil && parent.Type() == "export_specifier" {
			return true
		}
		opaque = true
		return true
	})
	if len(accesses) == 0 {
		opaque = true
	}
	return accesses, opaque
}

func (w *walker) staticAccess(parent, n *sitter.Node) (string, bool) {
	if parent == nil {
		return "", false
	}
	switch parent.Type() {
	case "member_expression":
		if sameNode(parent.ChildByFieldName("object"), n) {
			if prop := parent.ChildByFieldName("property"); prop != nil {
				return w.text(prop), true
			}
		}
	case "subscript_expression":
		if sameNode(parent.ChildByFieldName("object"), n) {
			return w.stringValue(parent.ChildByFieldName("index"))
		}
	case "nested_type_identifier":
		if sameNode(parent.ChildByFieldName("module"), n) {
			if name := parent.ChildByFieldName("name"); name != nil {
				return w.text(name), true
			}
		}
	case "nested_identifier":
		count := int(parent.NamedChildCount())
		if count >= 2 && sameNode(parent.NamedChild(0), n) {
			return w.text(parent.NamedChild(count - 1)), true
		}
	}
	return "", false
}
