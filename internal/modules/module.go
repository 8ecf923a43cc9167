package modules

import (
	"path"
	"sort"
	"strings"

	"deadwood/internal/paths"
)

// ModuleID is the canonical identity of a discovered file: its cleaned
// absolute path with forward slashes, extension included. It is computed
// once per file and is the only key used for graph lookups.
type ModuleID string

// NewModuleID canonicalizes a file-system path into a ModuleID
func NewModuleID(filePath string) (ModuleID, error) {
	abs, err := paths.Absolute(filePath)
	if err != nil {
		return "", err
	}
	return ModuleID(abs), nil
}

// moduleIDFromClean wraps a path that is already absolute and forward-slashed.
func moduleIDFromClean(p string) ModuleID {
	return ModuleID(path.Clean(p))
}

func (id ModuleID) String() string { return string(id) }

// Dir returns the directory containing the module
func (id ModuleID) Dir() string { return path.Dir(string(id)) }

// Stem returns the id with its source extension removed ("a/b.d.ts" -> "a/b").
func (id ModuleID) Stem() string { return trimSourceExt(string(id)) }

// ExportKind classifies an exported declaration
type ExportKind string

const (
	KindValue             ExportKind = "value"
	KindFunction          ExportKind = "function"
	KindClass             ExportKind = "class"
	KindInterface         ExportKind = "interface"
	KindEnum              ExportKind = "enum"
	KindTypeAlias         ExportKind = "type-alias"
	KindReExportOfDefault ExportKind = "re-export-of-default"
)

// ImportKind classifies how a symbol is bound by an import
type ImportKind string

const (
	ImportNamed     ImportKind = "named"
	ImportRenamed   ImportKind = "renamed-named"
	ImportDefault   ImportKind = "default-as-named"
	ImportNamespace ImportKind = "namespace"
)

// DefaultExportName is the external name every default export is indexed under
const DefaultExportName = "default"

// ExportEntry is one directly declared export of a module
type ExportEntry struct {
	// Name is the name shown in reports
	Name string `json:"name"`

	// External is the name importers use to reach this export
	External string `json:"external"`

	Kind ExportKind `json:"kind"`
	Line int        `json:"line,omitempty"`
}

// ImportedSymbol is one binding an importing module takes from a target
type ImportedSymbol struct {
	// Name is the external name requested from the target ("*" for namespaces)
	Name  string     `json:"name"`
	Local string     `json:"local,omitempty"`
	Kind  ImportKind `json:"kind"`

	// Accesses lists static property reads on a namespace binding
	Accesses []string `json:"accesses,omitempty"`

	// Opaque marks a namespace binding whose reads cannot be enumerated
	Opaque bool `json:"opaque,omitempty"`

	Line int `json:"line,omitempty"`
}

// ReExportKind distinguishes the forms of "export ... from"
type ReExportKind string

const (
	// ReExportAll is "export * from"
	ReExportAll ReExportKind = "all"
	// ReExportNamed is "export { a, b as c } from"
	ReExportNamed ReExportKind = "named"
	// ReExportNamespace is "export * as ns from"
	ReExportNamespace ReExportKind = "namespace"
)

// ExportSpecifier maps a local (or source-side) name to its exported name
type ExportSpecifier struct {
	Local    string `json:"local"`
	Exported string `json:"exported"`
}

// ReExport is a resolved barrel edge from a module to one of its children
type ReExport struct {
	Target     ModuleID          `json:"target"`
	Kind       ReExportKind      `json:"kind"`
	Specifiers []ExportSpecifier `json:"specifiers,omitempty"`
	Alias      string            `json:"alias,omitempty"`
}

// ImportEdge groups every symbol a module takes from one resolved target
type ImportEdge struct {
	Target  ModuleID         `json:"target"`
	Symbols []ImportedSymbol `json:"symbols,omitempty"`
}

// Module is one node of the immutable module graph
type Module struct {
	ID ModuleID `json:"id"`

	// Path is the canonical path used in reports
	Path string `json:"path"`

	OwnExports []ExportEntry `json:"ownExports,omitempty"`
	ReExports  []ReExport    `json:"reExports,omitempty"`
	Imports    []ImportEdge  `json:"imports,omitempty"`

	// Packages lists external package names referenced by this module
	Packages []string `json:"packages,omitempty"`

	// Builtins lists runtime modules imported without the "node:" prefix.
	// A manifest entry of the same name is an npm polyfill and counts as used.
	Builtins []string `json:"builtins,omitempty"`

	// Parsed is false for files whose declarations could not be produced.
	// Such modules stay valid resolution targets but expose nothing.
	Parsed bool `json:"parsed"`
}

// Export looks up a direct export by external name
func (m *Module) Export(external string) (ExportEntry, bool) {
	for _, e := range m.OwnExports {
		if e.External == external {
			return e, true
		}
	}
	return ExportEntry{}, false
}

// ReExportChildren returns the distinct barrel targets of the module
func (m *Module) ReExportChildren() []ModuleID {
	seen := make(map[ModuleID]bool, len(m.ReExports))
	var children []ModuleID
	for _, re := range m.ReExports {
		if !seen[re.Target] {
			seen[re.Target] = true
			children = append(children, re.Target)
		}
	}
	return children
}

var sourceExts = []string{".d.ts", ".d.mts", ".d.cts", ".tsx", ".ts", ".mts", ".cts", ".jsx", ".js", ".mjs", ".cjs"}

func trimSourceExt(p string) string {
	for _, ext := range sourceExts {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}

func sortModuleIDs(ids []ModuleID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
