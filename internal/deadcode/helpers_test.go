package deadcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"deadwood/internal/modules"
)

// The tests build graphs from records rooted at /p; report paths are
// relative to /p.

func record(name string) *modules.FileRecord {
	return &modules.FileRecord{ID: modules.ModuleID("/p/" + name)}
}

type graphBuilder struct {
	records []*modules.FileRecord
	failed  []modules.FailedFile
}

func newGraph() *graphBuilder {
	return &graphBuilder{}
}

func (b *graphBuilder) file(name string, build ...func(*modules.FileRecord)) *graphBuilder {
	rec := record(name)
	for _, fn := range build {
		fn(rec)
	}
	b.records = append(b.records, rec)
	return b
}

func (b *graphBuilder) broken(name string) *graphBuilder {
	b.failed = append(b.failed, modules.FailedFile{
		ID:  modules.ModuleID("/p/" + name),
		Err: errors.New("syntax error"),
	})
	return b
}

func (b *graphBuilder) build(t *testing.T) *modules.Graph {
	t.Helper()
	var ids []modules.ModuleID
	for _, r := range b.records {
		ids = append(ids, r.ID)
	}
	for _, f := range b.failed {
		ids = append(ids, f.ID)
	}
	resolver, err := modules.NewResolver(modules.NewFileSet(ids), nil, modules.ResolverOptions{Root: "/p"})
	require.NoError(t, err)
	return modules.NewBuilder(resolver, "/p", nil).Build(b.records, b.failed)
}

func exports(kind modules.ExportKind, names ...string) func(*modules.FileRecord) {
	return func(r *modules.FileRecord) {
		for _, n := range names {
			r.OwnExports = append(r.OwnExports, modules.ExportEntry{Name: n, External: n, Kind: kind, Line: len(r.OwnExports) + 1})
		}
	}
}

func defaultExport(local string, kind modules.ExportKind) func(*modules.FileRecord) {
	return func(r *modules.FileRecord) {
		r.OwnExports = append(r.OwnExports, modules.ExportEntry{Name: local, External: modules.DefaultExportName, Kind: kind})
	}
}

func imports(spec string, names ...string) func(*modules.FileRecord) {
	return func(r *modules.FileRecord) {
		ref := modules.ImportRef{Specifier: spec}
		for _, n := range names {
			kind := modules.ImportNamed
			if n == modules.DefaultExportName {
				kind = modules.ImportDefault
			}
			ref.Symbols = append(ref.Symbols, modules.ImportedSymbol{Name: n, Local: n, Kind: kind})
		}
		r.Imports = append(r.Imports, ref)
	}
}

func namespace(spec string, opaque bool, accesses ...string) func(*modules.FileRecord) {
	return func(r *modules.FileRecord) {
		r.Imports = append(r.Imports, modules.ImportRef{
			Specifier: spec,
			Symbols: []modules.ImportedSymbol{{
				Name:     "*",
				Local:    "NS",
				Kind:     modules.ImportNamespace,
				Accesses: accesses,
				Opaque:   opaque,
			}},
		})
	}
}

func reExportAll(spec string) func(*modules.FileRecord) {
	return func(r *modules.FileRecord) {
		r.ReExports = append(r.ReExports, modules.ReExportRef{Specifier: spec, Kind: modules.ReExportAll})
	}
}

func reExportAs(spec, alias string) func(*modules.FileRecord) {
	return func(r *modules.FileRecord) {
		r.ReExports = append(r.ReExports, modules.ReExportRef{Specifier: spec, Kind: modules.ReExportNamespace, Alias: alias})
	}
}

func reExportNamed(spec string, pairs ...string) func(*modules.FileRecord) {
	return func(r *modules.FileRecord) {
		ref := modules.ReExportRef{Specifier: spec, Kind: modules.ReExportNamed}
		for i := 0; i+1 < len(pairs); i += 2 {
			ref.Specifiers = append(ref.Specifiers, modules.ExportSpecifier{Local: pairs[i], Exported: pairs[i+1]})
		}
		r.ReExports = append(r.ReExports, ref)
	}
}

func deadLines(result *Result) []string {
	lines := make([]string, 0, len(result.DeadExports))
	for _, d := range result.DeadExports {
		lines = append(lines, d.String())
	}
	return lines
}

func analyze(t *testing.T, b *graphBuilder, opts Options) *Result {
	t.Helper()
	return NewAnalyzer(b.build(t), opts, nil).Analyze()
}
