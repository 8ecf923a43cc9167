package modules

import (
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSuffixes is the probe order used when none is configured
var DefaultSuffixes = []string{
	"", ".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs",
	"/index.ts", "/index.tsx", "/index.d.ts", "/index.js", "/index.jsx",
}

// A specifier written with a JS extension may name a TS source.
var tsSiblings = map[string][]string{
	".js":  {".ts", ".tsx", ".d.ts"},
	".jsx": {".tsx"},
	".mjs": {".mts", ".d.mts"},
	".cjs": {".cts", ".d.cts"},
}

const defaultResolverCacheSize = 8192

// ResolverOptions configures a Resolver
type ResolverOptions struct {
	// Root is the absolute source root the root marker resolves against
	Root string

	// RootMarker is a specifier prefix meaning "relative to Root" (e.g. "~/")
	RootMarker string

	Suffixes  []string
	CacheSize int
}

type resolveKey struct {
	dir       string
	specifier string
}

// Resolver maps specifiers to modules. Given the same file set and alias
// table the result depends only on (specifier, origin directory), which is
// what the memo is keyed by. Safe for concurrent use.
type Resolver struct {
	files   *FileSet
	aliases *AliasTable
	opts    ResolverOptions
	cache   *lru.Cache[resolveKey, Resolution]
}

// NewResolver creates a resolver over a fixed file set
func NewResolver(files *FileSet, aliases *AliasTable, opts ResolverOptions) (*Resolver, error) {
	if aliases == nil {
		aliases = NewAliasTable(nil, "")
	}
	if len(opts.Suffixes) == 0 {
		opts.Suffixes = DefaultSuffixes
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultResolverCacheSize
	}
	if opts.Root != "" {
		opts.Root = path.Clean(opts.Root)
	}

	cache, err := lru.New[resolveKey, Resolution](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Resolver{
		files:   files,
		aliases: aliases,
		opts:    opts,
		cache:   cache,
	}, nil
}

// Resolve resolves specifier as written in origin. Order: alias, relative
// (including the root marker), baseUrl, bare. An alias whose candidates all
// miss falls through to the later steps; a relative specifier that misses is
// Unresolved.
func (r *Resolver) Resolve(specifier string, origin ModuleID) Resolution {
	key := resolveKey{dir: origin.Dir(), specifier: specifier}
	if res, ok := r.cache.Get(key); ok {
		return res
	}
	res := r.resolve(specifier, key.dir)
	r.cache.Add(key, res)
	return res
}

func (r *Resolver) resolve(specifier, dir string) Resolution {
	if candidates, ok := r.aliases.Match(specifier); ok {
		for _, candidate := range candidates {
			if id, found := r.probe(candidate); found {
				return Resolution{Kind: Local, Module: id, Step: StepAlias}
			}
		}
	}

	if isRelative(specifier) {
		if id, found := r.probe(path.Join(dir, specifier)); found {
			return Resolution{Kind: Local, Module: id, Step: StepRelative}
		}
		return Resolution{Kind: Unresolved, Step: StepRelative}
	}

	if r.opts.RootMarker != "" && r.opts.Root != "" && strings.HasPrefix(specifier, r.opts.RootMarker) {
		rest := strings.TrimPrefix(specifier, r.opts.RootMarker)
		if id, found := r.probe(path.Join(r.opts.Root, rest)); found {
			return Resolution{Kind: Local, Module: id, Step: StepRoot}
		}
		return Resolution{Kind: Unresolved, Step: StepRoot}
	}

	if strings.HasPrefix(specifier, "/") {
		if id, found := r.probe(specifier); found {
			return Resolution{Kind: Local, Module: id, Step: StepRelative}
		}
		return Resolution{Kind: Unresolved, Step: StepRelative}
	}

	if base := r.aliases.BaseURL(); base != "" {
		if id, found := r.probe(path.Join(base, specifier)); found {
			return Resolution{Kind: Local, Module: id, Step: StepBaseURL}
		}
	}

	if isNodeBuiltin(specifier) {
		return Resolution{Kind: Builtin, Package: PackageName(strings.TrimPrefix(specifier, "node:")), Step: StepBare}
	}
	return Resolution{Kind: External, Package: PackageName(specifier), Step: StepBare}
}

// probe tries each suffix in order, then the TS sibling of a JS extension.
func (r *Resolver) probe(base string) (ModuleID, bool) {
	base = path.Clean(base)
	for _, suffix := range r.opts.Suffixes {
		candidate := base + suffix
		if r.files.Has(candidate) {
			return moduleIDFromClean(candidate), true
		}
	}

	ext := path.Ext(base)
	if siblings, ok := tsSiblings[ext]; ok {
		stem := strings.TrimSuffix(base, ext)
		same := r.files.ByStem(stem)
		for _, sibling := range siblings {
			for _, id := range same {
				if string(id) == stem+sibling {
					return id, true
				}
			}
		}
	}
	return "", false
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}
