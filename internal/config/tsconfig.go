package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Tsconfig is the subset of tsconfig.json that affects module resolution.
type Tsconfig struct {
	Path string
	// BaseURL is absolute, or empty when compilerOptions.baseUrl is unset.
	BaseURL string
	// Paths keeps compilerOptions.paths in file order; targets stay relative
	// to BaseURL (or the tsconfig directory when BaseURL is empty).
	Paths []AliasRule
}

// LoadTsconfig reads compilerOptions.baseUrl and compilerOptions.paths from
// path. The file is JSONC as tsc reads it: comments and trailing commas are
// accepted. A missing file yields (nil, nil); any other syntax problem is a
// ConfigError.
func LoadTsconfig(path string) (*Tsconfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &ConfigError{Field: "aliases.tsconfig", Message: err.Error()}
	}

	data, err = hujson.Standardize(data)
	if err != nil {
		return nil, &ConfigError{Field: "aliases.tsconfig", Message: fmt.Sprintf("%s: %v", path, err)}
	}

	var doc struct {
		CompilerOptions struct {
			BaseURL string          `json:"baseUrl"`
			Paths   json.RawMessage `json:"paths"`
		} `json:"compilerOptions"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Field: "aliases.tsconfig", Message: fmt.Sprintf("%s: %v", path, err)}
	}

	ts := &Tsconfig{Path: path}
	dir := filepath.Dir(path)
	if doc.CompilerOptions.BaseURL != "" {
		ts.BaseURL = filepath.Join(dir, filepath.FromSlash(doc.CompilerOptions.BaseURL))
	}

	if len(doc.CompilerOptions.Paths) > 0 && !bytes.Equal(bytes.TrimSpace(doc.CompilerOptions.Paths), []byte("null")) {
		rules, err := decodeOrderedPaths(doc.CompilerOptions.Paths)
		if err != nil {
			return nil, &ConfigError{Field: "aliases.tsconfig", Message: fmt.Sprintf("%s: compilerOptions.paths: %v", path, err)}
		}
		ts.Paths = rules
	}
	return ts, nil
}

// decodeOrderedPaths walks the paths object token by token; a map would lose
// the declaration order that breaks ties between equal-length patterns.
func decodeOrderedPaths(raw json.RawMessage) ([]AliasRule, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object")
	}

	var rules []AliasRule
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		pattern, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a pattern key")
		}
		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		rules = append(rules, AliasRule{Pattern: pattern, Targets: targets})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rules, nil
}
