package modules

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"deadwood/internal/errors"
)

// ImportRef is everything one file takes from one specifier, before resolution
type ImportRef struct {
	Specifier string
	Symbols   []ImportedSymbol
	// Dynamic is set when any occurrence came from require() or import()
	Dynamic bool
	// Asset is set when the specifier ends in an ignored extension
	Asset bool
	Line  int
}

// ReExportRef is one "export ... from" declaration, before resolution
type ReExportRef struct {
	Specifier  string
	Kind       ReExportKind
	Specifiers []ExportSpecifier
	Alias      string
	Asset      bool
	Line       int
}

// FileRecord is the immutable per-file result of extraction
type FileRecord struct {
	ID         ModuleID
	OwnExports []ExportEntry
	ReExports  []ReExportRef
	Imports    []ImportRef
}

// Extractor normalizes parser output into FileRecords
type Extractor struct {
	ignoreExts map[string]bool
}

// NewExtractor creates an extractor that flags specifiers ending in any of
// the given extensions (stylesheets, images and the like) as assets. Assets
// still resolve so that package imports such as "normalize.css" count as
// usage; local asset files are dropped after resolution.
func NewExtractor(ignoreExtensions []string) *Extractor {
	ignore := make(map[string]bool, len(ignoreExtensions))
	for _, ext := range ignoreExtensions {
		ignore[strings.ToLower(ext)] = true
	}
	return &Extractor{ignoreExts: ignore}
}

func (x *Extractor) asset(specifier string) bool {
	return x.ignoreExts[strings.ToLower(path.Ext(specifier))]
}

// Extract builds the record for one file. Declarations TypeScript merges
// into one symbol become one export; any other pair of direct exports
// sharing an external name yields a DUPLICATE_EXPORT error and no record.
func (x *Extractor) Extract(id ModuleID, decls *FileDeclarations) (*FileRecord, error) {
	rec := &FileRecord{ID: id}
	if decls == nil {
		return rec, nil
	}

	exports, err := ownExports(decls.Exports)
	if err != nil {
		return nil, err
	}
	rec.OwnExports = exports

	bySpecifier := make(map[string]int)
	for _, decl := range decls.Imports {
		spec := decl.Specifier()
		if spec == "" {
			continue
		}

		idx, ok := bySpecifier[spec]
		if !ok {
			idx = len(rec.Imports)
			bySpecifier[spec] = idx
			rec.Imports = append(rec.Imports, ImportRef{Specifier: spec, Asset: x.asset(spec), Line: decl.DeclLine()})
		}
		ref := &rec.Imports[idx]

		switch d := decl.(type) {
		case NamedImport:
			for _, s := range d.Specifiers {
				kind := ImportNamed
				switch {
				case s.Imported == DefaultExportName:
					kind = ImportDefault
				case s.Local != "" && s.Local != s.Imported:
					kind = ImportRenamed
				}
				ref.Symbols = append(ref.Symbols, ImportedSymbol{
					Name:  s.Imported,
					Local: s.Local,
					Kind:  kind,
					Line:  d.Line,
				})
			}
		case DefaultImport:
			ref.Symbols = append(ref.Symbols, ImportedSymbol{
				Name:  DefaultExportName,
				Local: d.Local,
				Kind:  ImportDefault,
				Line:  d.Line,
			})
		case NamespaceImport:
			ref.Symbols = append(ref.Symbols, ImportedSymbol{
				Name:     "*",
				Local:    d.Local,
				Kind:     ImportNamespace,
				Accesses: uniqueSorted(d.Accesses),
				Opaque:   d.Opaque,
				Line:     d.Line,
			})
		case DynamicImport:
			ref.Dynamic = true
			ref.Symbols = append(ref.Symbols, ImportedSymbol{
				Name:   "*",
				Kind:   ImportNamespace,
				Opaque: true,
				Line:   d.Line,
			})
		case SideEffectImport:
			// resolution attempt only
		}
	}

	for _, decl := range decls.ReExports {
		if decl.Specifier() == "" {
			continue
		}
		switch d := decl.(type) {
		case ExportFrom:
			rec.ReExports = append(rec.ReExports, ReExportRef{
				Specifier:  d.Source,
				Kind:       ReExportNamed,
				Specifiers: d.Specifiers,
				Asset:      x.asset(d.Source),
				Line:       d.Line,
			})
		case ExportAll:
			ref := ReExportRef{Specifier: d.Source, Kind: ReExportAll, Asset: x.asset(d.Source), Line: d.Line}
			if d.Alias != "" {
				ref.Kind = ReExportNamespace
				ref.Alias = d.Alias
			}
			rec.ReExports = append(rec.ReExports, ref)
		}
	}

	return rec, nil
}

func ownExports(decls []ExportDecl) ([]ExportEntry, error) {
	var entries []ExportEntry
	seen := make(map[string]int)
	merges := make(map[string]NamedExport)

	// named is non-nil only for NamedExport declarations; nothing else merges.
	add := func(e ExportEntry, named *NamedExport) error {
		if idx, dup := seen[e.External]; dup {
			prev, ok := merges[e.External]
			if ok && named != nil && mergeable(prev, *named) {
				return nil
			}
			return errors.New(errors.DuplicateExport,
				fmt.Sprintf("export %q declared twice (lines %d and %d)", e.External, entries[idx].Line, e.Line), nil)
		}
		seen[e.External] = len(entries)
		if named != nil {
			merges[e.External] = *named
		}
		entries = append(entries, e)
		return nil
	}

	for _, decl := range decls {
		switch d := decl.(type) {
		case NamedExport:
			d.Kind = kindOrValue(d.Kind)
			if err := add(ExportEntry{Name: d.Name, External: d.Name, Kind: d.Kind, Line: d.Line}, &d); err != nil {
				return nil, err
			}
		case DefaultExport:
			if err := add(ExportEntry{Name: DefaultExportName, External: DefaultExportName, Kind: kindOrValue(d.Kind), Line: d.Line}, nil); err != nil {
				return nil, err
			}
		case ExportList:
			for _, s := range d.Specifiers {
				exported := s.Exported
				if exported == "" {
					exported = s.Local
				}
				e := ExportEntry{Name: exported, External: exported, Kind: kindOrValue(d.Kinds[s.Local]), Line: d.Line}
				if exported == DefaultExportName {
					e.Name = s.Local
					e.Kind = KindReExportOfDefault
				}
				if err := add(e, nil); err != nil {
					return nil, err
				}
			}
		}
	}
	return entries, nil
}

type declSpace uint8

const (
	spaceValue declSpace = 1 << iota
	spaceType
)

func spacesOf(k ExportKind) declSpace {
	switch k {
	case KindInterface, KindTypeAlias:
		return spaceType
	case KindClass, KindEnum:
		return spaceValue | spaceType
	default:
		return spaceValue
	}
}

// mergeable reports whether two exported declarations of one name form a
// single symbol. Declarations in disjoint spaces ("const User" and
// "type User") always merge; within a shared space only interfaces, enums,
// function overloads, a class with an interface, and namespaces do.
func mergeable(a, b NamedExport) bool {
	if a.Namespace || b.Namespace {
		return true
	}
	if spacesOf(a.Kind)&spacesOf(b.Kind) == 0 {
		return true
	}
	if a.Kind == b.Kind {
		return a.Kind == KindInterface || a.Kind == KindEnum || a.Kind == KindFunction
	}
	return (a.Kind == KindClass && b.Kind == KindInterface) ||
		(a.Kind == KindInterface && b.Kind == KindClass)
}

func kindOrValue(k ExportKind) ExportKind {
	if k == "" {
		return KindValue
	}
	return k
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
