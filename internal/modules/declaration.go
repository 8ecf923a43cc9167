package modules

import "context"

// FileDeclarations is the parser's view of one file: every export, import
// and re-export declaration it contains, in source order.
type FileDeclarations struct {
	Path      string
	Exports   []ExportDecl
	Imports   []ImportDecl
	ReExports []ReExportDecl
}

// DeclarationParser turns raw source into declarations. Implementations
// must be safe for concurrent use.
type DeclarationParser interface {
	Parse(ctx context.Context, path string, source []byte) (*FileDeclarations, error)
}

// ExportDecl is one of NamedExport, DefaultExport or ExportList.
type ExportDecl interface {
	exportDecl()
	DeclLine() int
}

// NamedExport is "export <declaration>" binding Name
type NamedExport struct {
	Name string
	Kind ExportKind
	Line int

	// Namespace marks a "namespace X {}" block, which merges with any
	// declaration of the same name.
	Namespace bool
}

// DefaultExport is "export default <expr or declaration>". Local is the
// declared name when the default is a named function or class.
type DefaultExport struct {
	Kind  ExportKind
	Local string
	Line  int
}

// ExportList is "export { a, b as c }" with no source. Kinds carries the
// kind of each local binding, keyed by local name.
type ExportList struct {
	Specifiers []ExportSpecifier
	Kinds      map[string]ExportKind
	Line       int
}

func (NamedExport) exportDecl()   {}
func (DefaultExport) exportDecl() {}
func (ExportList) exportDecl()    {}

func (d NamedExport) DeclLine() int   { return d.Line }
func (d DefaultExport) DeclLine() int { return d.Line }
func (d ExportList) DeclLine() int    { return d.Line }

// ImportDecl is one of NamedImport, DefaultImport, NamespaceImport,
// SideEffectImport or DynamicImport.
type ImportDecl interface {
	importDecl()
	Specifier() string
	DeclLine() int
}

// ImportSpecifier is one "a" or "a as b" inside import braces
type ImportSpecifier struct {
	Imported string
	Local    string
}

// NamedImport is "import { a, b as c } from source"
type NamedImport struct {
	Source     string
	Specifiers []ImportSpecifier
	Line       int
}

// DefaultImport is "import x from source"
type DefaultImport struct {
	Source string
	Local  string
	Line   int
}

// NamespaceImport is "import * as ns from source". Accesses holds every
// static member read on the binding; Opaque is set when the binding escapes.
type NamespaceImport struct {
	Source   string
	Local    string
	Accesses []string
	Opaque   bool
	Line     int
}

// SideEffectImport is "import source" with no bindings
type SideEffectImport struct {
	Source string
	Line   int
}

// DynamicImport is require(source) or import(source) with a literal argument
type DynamicImport struct {
	Source string
	Line   int
}

func (NamedImport) importDecl()      {}
func (DefaultImport) importDecl()    {}
func (NamespaceImport) importDecl()  {}
func (SideEffectImport) importDecl() {}
func (DynamicImport) importDecl()    {}

func (d NamedImport) Specifier() string      { return d.Source }
func (d DefaultImport) Specifier() string    { return d.Source }
func (d NamespaceImport) Specifier() string  { return d.Source }
func (d SideEffectImport) Specifier() string { return d.Source }
func (d DynamicImport) Specifier() string    { return d.Source }

func (d NamedImport) DeclLine() int      { return d.Line }
func (d DefaultImport) DeclLine() int    { return d.Line }
func (d NamespaceImport) DeclLine() int  { return d.Line }
func (d SideEffectImport) DeclLine() int { return d.Line }
func (d DynamicImport) DeclLine() int    { return d.Line }

// ReExportDecl is one of ExportFrom or ExportAll.
type ReExportDecl interface {
	reExportDecl()
	Specifier() string
	DeclLine() int
}

// ExportFrom is "export { a, b as c } from source". Specifier.Local is the
// name requested from source.
type ExportFrom struct {
	Source     string
	Specifiers []ExportSpecifier
	Line       int
}

// ExportAll is "export * from source", or "export * as Alias from source"
// when Alias is set.
type ExportAll struct {
	Source string
	Alias  string
	Line   int
}

func (ExportFrom) reExportDecl() {}
func (ExportAll) reExportDecl()  {}

func (d ExportFrom) Specifier() string { return d.Source }
func (d ExportAll) Specifier() string  { return d.Source }

func (d ExportFrom) DeclLine() int { return d.Line }
func (d ExportAll) DeclLine() int  { return d.Line }
