package modules

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar"
	toml "github.com/pelletier/go-toml/v2"

	"deadwood/internal/errors"
)

// KeepFileName is the default keep file, looked up in the project directory
const KeepFileName = ".deadwood-keep.toml"

// KeepRule marks exports that are public API and must never be reported
type KeepRule struct {
	// Path is a doublestar glob over report paths
	Path string `toml:"path"`

	// Names lists external export names; empty or "*" keeps every export
	Names []string `toml:"names,omitempty"`

	Reason string `toml:"reason,omitempty"`
}

// KeepFile represents the root structure of the keep file
type KeepFile struct {
	Version int        `toml:"version"`
	Keep    []KeepRule `toml:"keep"`
}

// LoadKeepFile parses a keep file. A missing file yields an empty list.
func LoadKeepFile(p string) (*KeepFile, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &KeepFile{Version: 1}, nil
		}
		return nil, errors.New(errors.ConfigInvalid, fmt.Sprintf("cannot read keep file %s", p), err)
	}

	var kf KeepFile
	if err := toml.Unmarshal(data, &kf); err != nil {
		return nil, errors.New(errors.ConfigInvalid, fmt.Sprintf("malformed keep file %s", p), err)
	}

	for i, rule := range kf.Keep {
		if rule.Path == "" {
			return nil, errors.Newf(errors.ConfigInvalid, "keep[%d]: path is required", i)
		}
		if _, err := doublestar.Match(rule.Path, ""); err != nil {
			return nil, errors.New(errors.ConfigInvalid, fmt.Sprintf("keep[%d]: bad pattern %q", i, rule.Path), err)
		}
	}
	return &kf, nil
}

// WriteKeepFile writes kf to p
func WriteKeepFile(p string, kf *KeepFile) error {
	data, err := toml.Marshal(kf)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

// Keeps reports whether the export external in the file at reportPath is
// covered by a rule.
func (k *KeepFile) Keeps(reportPath, external string) bool {
	if k == nil {
		return false
	}
	for _, rule := range k.Keep {
		matched, err := doublestar.Match(rule.Path, reportPath)
		if err != nil || !matched {
			continue
		}
		if len(rule.Names) == 0 {
			return true
		}
		for _, name := range rule.Names {
			if name == "*" || name == external {
				return true
			}
		}
	}
	return false
}
