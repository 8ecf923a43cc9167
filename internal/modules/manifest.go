package modules

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"deadwood/internal/errors"
)

// DependencySection names the package.json section a dependency came from
type DependencySection string

const (
	SectionDependencies DependencySection = "dependencies"
	SectionDev          DependencySection = "devDependencies"
	SectionPeer         DependencySection = "peerDependencies"
	SectionOptional     DependencySection = "optionalDependencies"
)

// DependencyEntry is one declared package
type DependencyEntry struct {
	Name    string            `json:"name" yaml:"name"`
	Version string            `json:"version" yaml:"version"`
	Section DependencySection `json:"section" yaml:"section"`
}

// Manifest is the set of declared dependencies, sorted by name
type Manifest struct {
	Path         string
	Found        bool
	Dependencies []DependencyEntry
}

// ManifestOptions selects which sections besides "dependencies" are read
type ManifestOptions struct {
	IncludeDev      bool
	IncludePeer     bool
	IncludeOptional bool
}

// LoadManifest reads package.json at p. A missing file yields an empty
// manifest; a malformed one is a CONFIG_INVALID error. A package listed in
// several sections is kept once, from the first section read.
func LoadManifest(p string, opts ManifestOptions) (*Manifest, error) {
	m := &Manifest{Path: p}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, errors.New(errors.ConfigInvalid, fmt.Sprintf("cannot read manifest %s", p), err)
	}

	var pkg struct {
		Dependencies         map[string]string `json:"dependencies"`
		DevDependencies      map[string]string `json:"devDependencies"`
		PeerDependencies     map[string]string `json:"peerDependencies"`
		OptionalDependencies map[string]string `json:"optionalDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.New(errors.ConfigInvalid, fmt.Sprintf("malformed manifest %s", p), err)
	}
	m.Found = true

	seen := make(map[string]bool)
	add := func(section DependencySection, deps map[string]string) {
		for name, version := range deps {
			if seen[name] {
				continue
			}
			seen[name] = true
			m.Dependencies = append(m.Dependencies, DependencyEntry{Name: name, Version: version, Section: section})
		}
	}

	add(SectionDependencies, pkg.Dependencies)
	if opts.IncludeDev {
		add(SectionDev, pkg.DevDependencies)
	}
	if opts.IncludePeer {
		add(SectionPeer, pkg.PeerDependencies)
	}
	if opts.IncludeOptional {
		add(SectionOptional, pkg.OptionalDependencies)
	}

	sort.Slice(m.Dependencies, func(i, j int) bool { return m.Dependencies[i].Name < m.Dependencies[j].Name })
	return m, nil
}
