package modules

import (
	"testing"

	"deadwood/internal/errors"
)

func newTestBuilder(t *testing.T, files *FileSet) *Builder {
	t.Helper()
	return NewBuilder(newTestResolver(t, files, nil), "/proj", nil)
}

func TestBuilder_EdgesMergedByTarget(t *testing.T) {
	files := testFileSet("/proj/src/main.ts", "/proj/src/a.ts", "/proj/src/b.ts")
	b := newTestBuilder(t, files)

	rec := &FileRecord{
		ID: "/proj/src/main.ts",
		Imports: []ImportRef{
			{Specifier: "./b", Symbols: []ImportedSymbol{{Name: "y", Local: "y", Kind: ImportNamed}}},
			{Specifier: "./a", Symbols: []ImportedSymbol{{Name: "x", Local: "x", Kind: ImportNamed}}},
			{Specifier: "./a.ts", Symbols: []ImportedSymbol{{Name: "default", Local: "A", Kind: ImportDefault}}},
		},
	}

	g := b.Build([]*FileRecord{rec, {ID: "/proj/src/a.ts"}, {ID: "/proj/src/b.ts"}}, nil)
	m, ok := g.Module("/proj/src/main.ts")
	if !ok {
		t.Fatal("main.ts missing from graph")
	}
	if m.Path != "src/main.ts" {
		t.Errorf("Path = %q, want src/main.ts", m.Path)
	}
	if len(m.Imports) != 2 {
		t.Fatalf("len(Imports) = %d, want 2: %+v", len(m.Imports), m.Imports)
	}
	if m.Imports[0].Target != "/proj/src/a.ts" || len(m.Imports[0].Symbols) != 2 {
		t.Errorf("Imports[0] = %+v", m.Imports[0])
	}
	if m.Imports[1].Target != "/proj/src/b.ts" {
		t.Errorf("Imports[1] = %+v", m.Imports[1])
	}
	if len(g.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %+v", g.Diagnostics())
	}
}

func TestBuilder_PackagesAndUnresolved(t *testing.T) {
	files := testFileSet("/proj/src/main.ts")
	b := newTestBuilder(t, files)

	rec := &FileRecord{
		ID: "/proj/src/main.ts",
		Imports: []ImportRef{
			{Specifier: "react", Line: 1},
			{Specifier: "@scope/pkg/sub", Line: 2},
			{Specifier: "fs", Line: 3},
			{Specifier: "./gone", Line: 4},
			{Specifier: "react", Line: 5},
			{Specifier: "node:path", Line: 7},
			{Specifier: "events", Line: 8},
		},
		ReExports: []ReExportRef{
			{Specifier: "lodash", Kind: ReExportAll, Line: 6},
		},
	}

	g := b.Build([]*FileRecord{rec}, nil)
	m, _ := g.Module("/proj/src/main.ts")

	want := []string{"@scope/pkg", "lodash", "react"}
	if len(m.Packages) != len(want) {
		t.Fatalf("Packages = %v, want %v", m.Packages, want)
	}
	for i := range want {
		if m.Packages[i] != want[i] {
			t.Errorf("Packages[%d] = %q, want %q", i, m.Packages[i], want[i])
		}
	}

	wantBuiltins := []string{"events", "fs"}
	if len(m.Builtins) != len(wantBuiltins) || m.Builtins[0] != "events" || m.Builtins[1] != "fs" {
		t.Errorf("Builtins = %v, want %v", m.Builtins, wantBuiltins)
	}

	diags := g.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %+v, want one unresolved import", diags)
	}
	if diags[0].Kind != DiagUnresolvedImport || diags[0].Specifier != "./gone" || diags[0].Line != 4 {
		t.Errorf("diagnostic = %+v", diags[0])
	}
}

func TestBuilder_FailedFilesStayResolvable(t *testing.T) {
	files := testFileSet("/proj/src/main.ts", "/proj/src/broken.ts", "/proj/src/dup.ts")
	b := newTestBuilder(t, files)

	rec := &FileRecord{
		ID: "/proj/src/main.ts",
		Imports: []ImportRef{
			{Specifier: "./broken", Symbols: []ImportedSymbol{{Name: "x", Local: "x", Kind: ImportNamed}}},
		},
	}
	failed := []FailedFile{
		{ID: "/proj/src/broken.ts", Err: errors.New(errors.ParseFailed, "syntax error", nil)},
		{ID: "/proj/src/dup.ts", Err: errors.New(errors.DuplicateExport, "foo exported twice", nil)},
	}

	g := b.Build([]*FileRecord{rec}, failed)
	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", g.Len())
	}

	broken, ok := g.Module("/proj/src/broken.ts")
	if !ok || broken.Parsed {
		t.Fatalf("broken.ts should be an unparsed module: %+v", broken)
	}
	main, _ := g.Module("/proj/src/main.ts")
	if len(main.Imports) != 1 || main.Imports[0].Target != "/proj/src/broken.ts" {
		t.Errorf("import of a failed file should still resolve: %+v", main.Imports)
	}

	diags := g.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	if diags[0].Kind != DiagParseFailed || diags[0].Path != "src/broken.ts" {
		t.Errorf("diags[0] = %+v", diags[0])
	}
	if diags[1].Kind != DiagDuplicateExport || diags[1].Path != "src/dup.ts" {
		t.Errorf("diags[1] = %+v", diags[1])
	}
}

func TestBuilder_OpaqueNamespaceDiagnostic(t *testing.T) {
	files := testFileSet("/proj/src/main.ts", "/proj/src/lazy.ts")
	b := newTestBuilder(t, files)

	rec := &FileRecord{
		ID: "/proj/src/main.ts",
		Imports: []ImportRef{
			{Specifier: "./lazy", Dynamic: true, Line: 3, Symbols: []ImportedSymbol{{Name: "*", Kind: ImportNamespace, Opaque: true, Line: 3}}},
		},
		ReExports: []ReExportRef{
			{Specifier: "./lazy", Kind: ReExportNamed, Specifiers: []ExportSpecifier{{Local: "a", Exported: "b"}}},
		},
	}

	g := b.Build([]*FileRecord{rec, {ID: "/proj/src/lazy.ts"}}, nil)
	diags := g.Diagnostics()
	if len(diags) != 1 || diags[0].Kind != DiagOpaqueNamespace || diags[0].Line != 3 {
		t.Fatalf("diagnostics = %+v", diags)
	}

	m, _ := g.Module("/proj/src/main.ts")
	if len(m.ReExports) != 1 || m.ReExports[0].Target != "/proj/src/lazy.ts" || m.ReExports[0].Kind != ReExportNamed {
		t.Errorf("ReExports = %+v", m.ReExports)
	}
	if children := m.ReExportChildren(); len(children) != 1 {
		t.Errorf("ReExportChildren() = %v", children)
	}
}

func TestGraph_ModulesSorted(t *testing.T) {
	files := testFileSet("/proj/src/z.ts", "/proj/src/a.ts", "/proj/src/m.ts")
	b := newTestBuilder(t, files)

	g := b.Build([]*FileRecord{{ID: "/proj/src/z.ts"}, {ID: "/proj/src/m.ts"}}, []FailedFile{{ID: "/proj/src/a.ts"}})
	mods := g.Modules()
	if len(mods) != 3 {
		t.Fatalf("len(Modules()) = %d", len(mods))
	}
	for i := 1; i < len(mods); i++ {
		if mods[i-1].ID >= mods[i].ID {
			t.Errorf("modules not sorted: %s before %s", mods[i-1].ID, mods[i].ID)
		}
	}
}
