package modules

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"deadwood/internal/config"
	"deadwood/internal/errors"
)

// AliasRule maps a specifier pattern to absolute target patterns. A single
// "*" in Pattern captures text that replaces "*" in each target.
type AliasRule struct {
	Pattern string
	Targets []string
}

type aliasEntry struct {
	rule     AliasRule
	prefix   string
	suffix   string
	wildcard bool
}

// AliasTable holds alias rules in match order: exact patterns first, then
// wildcard patterns by descending prefix length, ties in configured order.
type AliasTable struct {
	entries []aliasEntry
	baseURL string
}

// NewAliasTable orders rules for matching. baseURL may be empty.
func NewAliasTable(rules []AliasRule, baseURL string) *AliasTable {
	t := &AliasTable{baseURL: baseURL}
	for _, r := range rules {
		e := aliasEntry{rule: r, prefix: r.Pattern}
		if i := strings.IndexByte(r.Pattern, '*'); i >= 0 {
			e.wildcard = true
			e.prefix = r.Pattern[:i]
			e.suffix = r.Pattern[i+1:]
		}
		t.entries = append(t.entries, e)
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		a, b := t.entries[i], t.entries[j]
		if a.wildcard != b.wildcard {
			return !a.wildcard
		}
		return len(a.prefix) > len(b.prefix)
	})
	return t
}

// BaseURL returns the baseUrl root, or "" when none is configured
func (t *AliasTable) BaseURL() string {
	return t.baseURL
}

// Len returns the number of rules
func (t *AliasTable) Len() int {
	return len(t.entries)
}

// Match returns the candidate paths of the first rule matching specifier,
// in target order. ok is false when no rule matches.
func (t *AliasTable) Match(specifier string) (candidates []string, ok bool) {
	for _, e := range t.entries {
		var captured string
		if e.wildcard {
			if len(specifier) < len(e.prefix)+len(e.suffix) ||
				!strings.HasPrefix(specifier, e.prefix) ||
				!strings.HasSuffix(specifier, e.suffix) {
				continue
			}
			captured = specifier[len(e.prefix) : len(specifier)-len(e.suffix)]
		} else if specifier != e.rule.Pattern {
			continue
		}

		for _, target := range e.rule.Targets {
			candidates = append(candidates, path.Clean(strings.Replace(target, "*", captured, 1)))
		}
		return candidates, true
	}
	return nil, false
}

// LoadAliasTable merges configured rules with tsconfig paths. Configured
// rules come first so they win ties; configured targets are relative to
// projectDir, tsconfig targets to its baseUrl (or its own directory).
func LoadAliasTable(projectDir string, cfg config.AliasesConfig) (*AliasTable, error) {
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "cannot resolve project directory", err)
	}

	var rules []AliasRule
	for _, r := range cfg.Rules {
		rules = append(rules, AliasRule{Pattern: r.Pattern, Targets: absTargets(projectDir, r.Targets)})
	}

	var baseURL string
	if cfg.Tsconfig != "" {
		tsPath := cfg.Tsconfig
		if !filepath.IsAbs(tsPath) {
			tsPath = filepath.Join(projectDir, tsPath)
		}
		ts, err := config.LoadTsconfig(tsPath)
		if err != nil {
			return nil, errors.New(errors.ConfigInvalid, "invalid tsconfig", err)
		}
		if ts != nil {
			root := ts.BaseURL
			if root == "" {
				root = filepath.Dir(ts.Path)
			}
			for _, r := range ts.Paths {
				rules = append(rules, AliasRule{Pattern: r.Pattern, Targets: absTargets(root, r.Targets)})
			}
			baseURL = ts.BaseURL
		}
	}

	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
		if !filepath.IsAbs(baseURL) {
			baseURL = filepath.Join(projectDir, baseURL)
		}
	}
	if baseURL != "" {
		baseURL = filepath.ToSlash(filepath.Clean(baseURL))
	}

	for _, r := range rules {
		if strings.Count(r.Pattern, "*") > 1 {
			return nil, errors.Newf(errors.ConfigInvalid, "alias pattern %q may contain at most one '*'", r.Pattern)
		}
		if len(r.Targets) == 0 {
			return nil, errors.Newf(errors.ConfigInvalid, "alias pattern %q has no targets", r.Pattern)
		}
	}

	return NewAliasTable(rules, baseURL), nil
}

func absTargets(root string, targets []string) []string {
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		p := target
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, filepath.FromSlash(p))
		}
		out = append(out, filepath.ToSlash(filepath.Clean(p)))
	}
	return out
}
