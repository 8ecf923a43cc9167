package deadcode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadwood/internal/modules"
)

func TestAnalyze_DirectImportIsUsed(t *testing.T) {
	g := newGraph().
		file("a.ts", exports(modules.KindFunction, "foo")).
		file("b.ts", imports("./a", "foo"))

	result := analyze(t, g, Options{})
	assert.Empty(t, result.DeadExports)
	assert.Equal(t, 1, result.Summary.Used)
}

func TestAnalyze_UnimportedExportIsDead(t *testing.T) {
	g := newGraph().file("a.ts", exports(modules.KindFunction, "bar"))

	result := analyze(t, g, Options{})
	assert.Equal(t, []string{"function bar in: a.ts"}, deadLines(result))
	assert.Equal(t, 1, result.Summary.ByKind["function"])
}

func TestAnalyze_BarrelReExportAll(t *testing.T) {
	g := newGraph().
		file("a.ts", exports(modules.KindFunction, "bar", "baz")).
		file("barrel.ts", reExportAll("./a")).
		file("consumer.ts", imports("./barrel", "bar"))

	result := analyze(t, g, Options{})
	assert.Equal(t, []string{"function baz in: a.ts"}, deadLines(result))
}

func TestAnalyze_TransitiveReExportChain(t *testing.T) {
	g := newGraph().
		file("b.ts", exports(modules.KindValue, "X")).
		file("a.ts", reExportAll("./b")).
		file("top.ts", reExportAll("./a")).
		file("c.ts", imports("./top", "X"))

	result := analyze(t, g, Options{})
	assert.Empty(t, result.DeadExports)
}

func TestAnalyze_NamespaceAccesses(t *testing.T) {
	g := newGraph().
		file("utils.ts", exports(modules.KindFunction, "helper", "unused2")).
		file("consumer.ts", namespace("./utils", false, "helper"))

	result := analyze(t, g, Options{})
	assert.Equal(t, []string{"function unused2 in: utils.ts"}, deadLines(result))
}

func TestAnalyze_NamespaceAccessThroughBarrel(t *testing.T) {
	g := newGraph().
		file("utils.ts", exports(modules.KindFunction, "helper", "other")).
		file("index.ts", reExportAll("./utils")).
		file("consumer.ts", namespace("./index", false, "helper"))

	result := analyze(t, g, Options{})
	assert.Equal(t, []string{"function other in: utils.ts"}, deadLines(result))
}

func TestAnalyze_OpaqueNamespaceMarksDescendants(t *testing.T) {
	g := newGraph().
		file("deep.ts", exports(modules.KindValue, "d1", "d2")).
		file("mid.ts", exports(modules.KindValue, "m1"), reExportAll("./deep")).
		file("top.ts", exports(modules.KindValue, "t1"), reExportNamed("./mid", "m1", "m1")).
		file("unrelated.ts", exports(modules.KindValue, "u1")).
		file("consumer.ts", namespace("./top", true))

	result := analyze(t, g, Options{})
	assert.Equal(t, []string{"value u1 in: unrelated.ts"}, deadLines(result))
}

func TestAnalyze_CycleTerminates(t *testing.T) {
	g := newGraph().
		file("a.ts", exports(modules.KindValue, "x"), reExportAll("./b")).
		file("b.ts", exports(modules.KindValue, "y"), reExportAll("./a")).
		file("c.ts", imports("./a", "y", "missing"), imports("./b", "x", "alsoMissing"), namespace("./a", true))

	result := analyze(t, g, Options{})
	assert.Empty(t, result.DeadExports)
}

func TestAnalyze_CycleWithoutMatchReportsExports(t *testing.T) {
	g := newGraph().
		file("a.ts", exports(modules.KindValue, "x"), reExportAll("./b")).
		file("b.ts", exports(modules.KindValue, "y"), reExportAll("./a")).
		file("c.ts", imports("./a", "nothing"))

	result := analyze(t, g, Options{})
	assert.Equal(t, []string{"value x in: a.ts", "value y in: b.ts"}, deadLines(result))
}

func TestAnalyze_NamedReExportRename(t *testing.T) {
	g := newGraph().
		file("a.ts", exports(modules.KindFunction, "foo", "other")).
		file("barrel.ts", reExportNamed("./a", "foo", "bar")).
		file("consumer.ts", imports("./barrel", "bar", "foo"))

	result := analyze(t, g, Options{})
	// "foo" is not exported by the barrel under its own name
	assert.Equal(t, []string{"function other in: a.ts"}, deadLines(result))
}

func TestAnalyze_NamespaceReExport(t *testing.T) {
	g := newGraph().
		file("a.ts", exports(modules.KindValue, "p", "q")).
		file("barrel.ts", reExportAs("./a", "ns")).
		file("consumer.ts", imports("./barrel", "ns"))

	result := analyze(t, g, Options{})
	assert.Empty(t, result.DeadExports)
}

func TestAnalyze_DefaultExports(t *testing.T) {
	g := newGraph().
		file("a.ts", defaultExport("Widget", modules.KindClass)).
		file("b.ts", defaultExport("default", modules.KindFunction)).
		file("star.ts", reExportAll("./b")).
		file("consumer.ts", imports("./a", "default"), imports("./star", "default"))

	result := analyze(t, g, Options{})
	// export * does not forward default
	assert.Equal(t, []string{"function default in: b.ts"}, deadLines(result))
}

func TestAnalyze_ExternalAndUnresolvedEdgesMarkNothing(t *testing.T) {
	g := newGraph().
		file("a.ts", exports(modules.KindValue, "foo")).
		file("b.ts", imports("./missing", "foo"), imports("react", "foo"))

	result := analyze(t, g, Options{})
	assert.Equal(t, []string{"value foo in: a.ts"}, deadLines(result))
}

func TestAnalyze_Entrypoints(t *testing.T) {
	g := newGraph().
		file("src/index.ts", exports(modules.KindFunction, "main"), reExportAll("./lib")).
		file("src/lib.ts", exports(modules.KindFunction, "api")).
		file("src/internal.ts", exports(modules.KindFunction, "hidden"))

	result := analyze(t, g, Options{Entrypoints: []string{"src/index.ts"}})
	assert.Equal(t, []string{"function hidden in: src/internal.ts"}, deadLines(result))
}

func TestAnalyze_KeepFile(t *testing.T) {
	g := newGraph().
		file("src/public/api.ts", exports(modules.KindFunction, "a", "b")).
		file("src/util.ts", exports(modules.KindFunction, "keepMe", "dropMe"))

	keep := &modules.KeepFile{Keep: []modules.KeepRule{
		{Path: "src/public/**"},
		{Path: "src/util.ts", Names: []string{"keepMe"}},
	}}

	result := analyze(t, g, Options{Keep: keep})
	assert.Equal(t, []string{"function dropMe in: src/util.ts"}, deadLines(result))
	assert.Equal(t, 3, result.Summary.Kept)
}

func TestAnalyze_TestFiles(t *testing.T) {
	build := func() *graphBuilder {
		return newGraph().
			file("src/math.ts", exports(modules.KindFunction, "add", "sub")).
			file("src/math.test.ts", exports(modules.KindFunction, "fixture"), imports("./math", "add")).
			file("src/__tests__/helpers.ts", exports(modules.KindFunction, "setup"))
	}

	result := analyze(t, build(), Options{})
	assert.Equal(t, []string{"function sub in: src/math.ts"}, deadLines(result))
	assert.Equal(t, 2, result.Summary.Excluded)

	result = analyze(t, build(), Options{IgnoreTestUsage: true})
	assert.Equal(t, []string{"function add in: src/math.ts", "function sub in: src/math.ts"}, deadLines(result))
}

func TestAnalyze_ExcludeGlobs(t *testing.T) {
	g := newGraph().
		file("src/legacy/old.ts", exports(modules.KindValue, "x")).
		file("src/api.generated.ts", exports(modules.KindValue, "gen")).
		file("src/new.ts", exports(modules.KindValue, "y"))

	result := analyze(t, g, Options{Exclude: []string{"src/legacy/**"}})
	assert.Equal(t, []string{"value y in: src/new.ts"}, deadLines(result))
}

func TestAnalyze_UnparsedModules(t *testing.T) {
	g := newGraph().
		broken("broken.ts").
		file("a.ts", exports(modules.KindValue, "v")).
		file("b.ts", imports("./broken", "x"), namespace("./broken", true), imports("./a", "v"))

	result := analyze(t, g, Options{})
	assert.Empty(t, result.DeadExports)
	assert.Equal(t, 1, result.Summary.Unparsed)
	assert.Equal(t, 3, result.Summary.Modules)
}

func TestAnalyze_Deterministic(t *testing.T) {
	build := func() *graphBuilder {
		return newGraph().
			file("z.ts", exports(modules.KindValue, "b", "a")).
			file("m/x.ts", exports(modules.KindClass, "Z", "A")).
			file("a.ts", exports(modules.KindFunction, "only"))
	}

	first := deadLines(analyze(t, build(), Options{}))
	second := deadLines(analyze(t, build(), Options{}))
	require.Equal(t, first, second)
	assert.Equal(t, []string{
		"function only in: a.ts",
		"class A in: m/x.ts",
		"class Z in: m/x.ts",
		"value a in: z.ts",
		"value b in: z.ts",
	}, first)
}

// Every export appears in the output exactly when no import reaches it.
func TestAnalyze_Soundness(t *testing.T) {
	names := []string{"e0", "e1", "e2", "e3"}
	for mask := 0; mask < 1<<len(names); mask++ {
		t.Run(fmt.Sprintf("mask=%04b", mask), func(t *testing.T) {
			var imported []string
			for i, n := range names {
				if mask&(1<<i) != 0 {
					imported = append(imported, n)
				}
			}
			g := newGraph().
				file("lib.ts", exports(modules.KindValue, names...)).
				file("index.ts", reExportAll("./lib")).
				file("app.ts", imports("./index", imported...))

			result := analyze(t, g, Options{})
			var want []string
			for i, n := range names {
				if mask&(1<<i) == 0 {
					want = append(want, "value "+n+" in: lib.ts")
				}
			}
			if want == nil {
				want = []string{}
			}
			assert.Equal(t, want, deadLines(result))
		})
	}
}

func TestUsage_MarkIsMonotonic(t *testing.T) {
	u := NewUsage()
	ref := ExportRef{Module: "/p/a.ts", Name: "x"}

	assert.False(t, u.IsUsed(ref))
	assert.True(t, u.Mark(ref))
	assert.False(t, u.Mark(ref))
	assert.True(t, u.IsUsed(ref))
	assert.Equal(t, 1, u.Len())
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"src/components/Button.test.ts", true},
		{"src/utils/helper.spec.js", true},
		{"src/components/Button.test.tsx", true},
		{"__tests__/Button.tsx", true},
		{"src/__tests__/Button.tsx", true},
		{"src/__mocks__/api.ts", true},
		{"src/components/Button.tsx", false},
		{"src/testing.ts", false},
		{"src/contest/x.ts", false},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsTestFile(tc.path))
		})
	}
}

func TestExclusionRules(t *testing.T) {
	rules := NewExclusionRules([]string{"vendor/**", "**/*.d.ts"}, []string{"src/index.ts", "bin/*.ts"})

	tests := []struct {
		path   string
		reason string
	}{
		{"src/a.test.ts", "test file"},
		{"src/schema.generated.ts", "generated file"},
		{"src/__generated__/types.ts", "generated file"},
		{"vendor/lib/x.ts", "matches exclusion pattern: vendor/**"},
		{"src/types/global.d.ts", "matches exclusion pattern: **/*.d.ts"},
		{"src/a.ts", ""},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.reason, rules.ShouldExclude(tc.path))
		})
	}

	assert.True(t, rules.IsEntrypoint("src/index.ts"))
	assert.True(t, rules.IsEntrypoint("bin/cli.ts"))
	assert.False(t, rules.IsEntrypoint("src/lib.ts"))
}

func TestExclusionRules_CleansPatterns(t *testing.T) {
	rules := NewExclusionRules([]string{"./scripts/**", ""}, []string{"./src/index.ts"})

	assert.True(t, rules.IsEntrypoint("src/index.ts"))
	assert.Equal(t, "matches exclusion pattern: scripts/**", rules.ShouldExclude("scripts/build.ts"))
	assert.Equal(t, "", rules.ShouldExclude("src/a.ts"))
}
