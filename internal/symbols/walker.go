//go:build cgo

package symbols

import (
	sitter "github.com/smacker/go-tree-sitter"

	"deadwood/internal/modules"
)

// importBinding remembers where a local import binding came from, so that
// "export { x }" of an imported name can be treated as a re-export.
type importBinding struct {
	source    string
	imported  string
	namespace bool
}

type walker struct {
	source   []byte
	kinds    map[string]modules.ExportKind
	bindings map[string]importBinding
}

func newWalker(source []byte) *walker {
	return &walker{
		source:   source,
		kinds:    make(map[string]modules.ExportKind),
		bindings: make(map[string]importBinding),
	}
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.source)
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func (w *walker) declarations(root *sitter.Node) *modules.FileDeclarations {
	decls := &modules.FileDeclarations{}

	// Local kinds and import bindings first: export lists may precede the
	// declarations they name.
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "import_statement":
			w.recordBindings(stmt)
		case "export_statement":
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				w.recordKinds(decl)
			}
		default:
			w.recordKinds(stmt)
		}
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "import_statement":
			decls.Imports = append(decls.Imports, w.imports(stmt)...)
		case "export_statement":
			w.export(stmt, decls)
		}
	}

	for i, imp := range decls.Imports {
		if ns, ok := imp.(modules.NamespaceImport); ok {
			ns.Accesses, ns.Opaque = w.scanNamespace(root, ns.Local)
			decls.Imports[i] = ns
		}
	}
	decls.Imports = append(decls.Imports, w.dynamicImports(root)...)

	decls.Exports = collapseOverloads(decls.Exports)
	return decls
}

// collapseOverloads folds the overload signatures of an exported function
// into one export. Other merged declarations are resolved by the extractor.
func collapseOverloads(exports []modules.ExportDecl) []modules.ExportDecl {
	seen := make(map[string]bool)
	out := exports[:0]
	for _, e := range exports {
		if named, ok := e.(modules.NamedExport); ok && named.Kind == modules.KindFunction {
			if seen[named.Name] {
				continue
			}
			seen[named.Name] = true
		}
		out = append(out, e)
	}
	return out
}

// recordKinds notes the kind of every name a top-level statement declares.
func (w *walker) recordKinds(stmt *sitter.Node) {
	for _, d := range w.declared(stmt) {
		if _, ok := w.kinds[d.name]; !ok {
			w.kinds[d.name] = d.kind
		}
	}
}

type declaredName struct {
	name      string
	kind      modules.ExportKind
	namespace bool
}

// declared returns the names a declaration statement binds.
func (w *walker) declared(n *sitter.Node) []declaredName {
	switch n.Type() {
	case "function_declaration", "generator_function_declaration", "function_signature":
		return w.single(n, modules.KindFunction)
	case "class_declaration", "abstract_class_declaration":
		return w.single(n, modules.KindClass)
	case "interface_declaration":
		return w.single(n, modules.KindInterface)
	case "enum_declaration":
		return w.single(n, modules.KindEnum)
	case "type_alias_declaration":
		return w.single(n, modules.KindTypeAlias)
	case "internal_module", "module":
		name := n.ChildByFieldName("name")
		if name == nil || name.Type() == "string" {
			return nil // declare module "pkg" is not a binding
		}
		return []declaredName{{name: w.text(name), kind: modules.KindValue, namespace: true}}
	case "lexical_declaration", "variable_declaration":
		var out []declaredName
		for i := 0; i < int(n.NamedChildCount()); i++ {
			declarator := n.NamedChild(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			for _, name := range w.bindingNames(declarator.ChildByFieldName("name")) {
				out = append(out, declaredName{name: name, kind: modules.KindValue})
			}
		}
		return out
	case "ambient_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if names := w.declared(n.NamedChild(i)); len(names) > 0 {
				return names
			}
		}
	}
	return nil
}

func (w *walker) single(n *sitter.Node, kind modules.ExportKind) []declaredName {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	return []declaredName{{name: w.text(name), kind: kind}}
}

// bindingNames flattens a binding pattern into the identifiers it binds.
func (w *walker) bindingNames(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []string{w.text(n)}
	case "pair_pattern":
		return w.bindingNames(n.ChildByFieldName("value"))
	case "assignment_pattern", "object_assignment_pattern":
		return w.bindingNames(n.ChildByFieldName("left"))
	case "object_pattern", "array_pattern", "rest_pattern":
		var out []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			out = append(out, w.bindingNames(n.NamedChild(i))...)
		}
		return out
	}
	return nil
}

// stringValue returns the contents of a string literal node.
func (w *walker) stringValue(n *sitter.Node) (string, bool) {
	if n == nil || n.Type() != "string" {
		return "", false
	}
	s := w.text(n)
	if len(s) < 2 {
		return "", false
	}
	return s[1 : len(s)-1], true
}

// moduleExportName reads an identifier or string export name.
func (w *walker) moduleExportName(n *sitter.Node) string {
	if s, ok := w.stringValue(n); ok {
		return s
	}
	return w.text(n)
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Type() == typ {
			return child
		}
	}
	return nil
}

func namedChildOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// walk visits n and its named descendants in source order. visit returns
// false to skip a subtree.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	stack := []*sitter.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(cur) {
			continue
		}
		for i := int(cur.NamedChildCount()) - 1; i >= 0; i-- {
			if child := cur.NamedChild(i); child != nil {
				stack = append(stack, child)
			}
		}
	}
}
