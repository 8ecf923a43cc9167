package deadcode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"deadwood/internal/modules"
)

func manifest(names ...string) *modules.Manifest {
	m := &modules.Manifest{Path: "package.json", Found: true}
	for _, n := range names {
		m.Dependencies = append(m.Dependencies, modules.DependencyEntry{
			Name:    n,
			Version: "^1.0.0",
			Section: modules.SectionDependencies,
		})
	}
	return m
}

func TestTrackDependencies_UnusedDependency(t *testing.T) {
	g := newGraph().file("a.ts", imports("react", "useState")).build(t)

	result := TrackDependencies(g, manifest("lodash", "react"), DepsOptions{})
	assert.Equal(t, []string{"lodash"}, result.UnusedNames())
	assert.Len(t, result.Dependencies, 2)
	assert.True(t, result.Dependencies[1].Used)
}

func TestTrackDependencies_ScopedSubpath(t *testing.T) {
	g := newGraph().file("a.ts", imports("@scope/pkg/sub/path", "x")).build(t)

	result := TrackDependencies(g, manifest("@scope/pkg", "@scope/other"), DepsOptions{})
	assert.Equal(t, []string{"@scope/other"}, result.UnusedNames())
}

func TestTrackDependencies_SideEffectAndReExport(t *testing.T) {
	g := newGraph().
		file("a.ts", imports("polyfill")).
		file("b.ts", reExportAll("rxjs/operators")).
		build(t)

	result := TrackDependencies(g, manifest("polyfill", "rxjs"), DepsOptions{})
	assert.Empty(t, result.UnusedNames())
}

func TestTrackDependencies_BuiltinNamedPackages(t *testing.T) {
	g := newGraph().file("a.ts",
		imports("events", "EventEmitter"),
		imports("buffer", "Buffer"),
		imports("util/types", "isDate"),
		imports("lodash", "map"),
		imports("node:path", "join"),
	).build(t)

	result := TrackDependencies(g, manifest("buffer", "events", "lodash", "path", "util"), DepsOptions{})
	assert.Equal(t, []string{"path"}, result.UnusedNames())
	assert.Empty(t, result.Undeclared)
}

func TestTrackDependencies_BuiltinsNeverUndeclared(t *testing.T) {
	g := newGraph().file("a.ts", imports("fs", "readFile"), imports("node:fs/promises", "stat")).build(t)

	result := TrackDependencies(g, manifest(), DepsOptions{})
	assert.Empty(t, result.UnusedNames())
	assert.Empty(t, result.Undeclared)
}

func TestTrackDependencies_ImplyTypes(t *testing.T) {
	g := newGraph().file("a.ts", imports("lodash", "map"), imports("@babel/core", "transform")).build(t)
	m := manifest("lodash", "@babel/core", "@types/lodash", "@types/babel__core", "@types/node")

	result := TrackDependencies(g, m, DepsOptions{ImplyTypes: true})
	assert.Equal(t, []string{"@types/node"}, result.UnusedNames())

	result = TrackDependencies(g, m, DepsOptions{})
	assert.Equal(t, []string{"@types/babel__core", "@types/lodash", "@types/node"}, result.UnusedNames())
}

func TestTrackDependencies_TestUsage(t *testing.T) {
	g := newGraph().file("src/a.spec.ts", imports("jest-mock", "fn")).build(t)

	assert.Empty(t, TrackDependencies(g, manifest("jest-mock"), DepsOptions{}).UnusedNames())
	assert.Equal(t, []string{"jest-mock"},
		TrackDependencies(g, manifest("jest-mock"), DepsOptions{IgnoreTestUsage: true}).UnusedNames())
}

func TestTrackDependencies_Undeclared(t *testing.T) {
	g := newGraph().file("a.ts", imports("zod", "z"), imports("axios", "get"), imports("react", "x")).build(t)

	result := TrackDependencies(g, manifest("react"), DepsOptions{})
	assert.Equal(t, []string{"axios", "zod"}, result.Undeclared)

	missing := &modules.Manifest{Path: "package.json"}
	result = TrackDependencies(g, missing, DepsOptions{})
	assert.Empty(t, result.Undeclared)
	assert.Empty(t, result.Dependencies)
}

func TestTrackDependencies_SortedOutput(t *testing.T) {
	g := newGraph().file("a.ts").build(t)
	m := &modules.Manifest{Found: true, Dependencies: []modules.DependencyEntry{
		{Name: "zeta"}, {Name: "alpha"}, {Name: "@scope/mid"},
	}}

	result := TrackDependencies(g, m, DepsOptions{})
	assert.Equal(t, []string{"@scope/mid", "alpha", "zeta"}, result.UnusedNames())
}
