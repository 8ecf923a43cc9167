package modules

import (
	"os"
	"path/filepath"
	"testing"

	"deadwood/internal/config"
	"deadwood/internal/errors"
)

func TestAliasTable_Order(t *testing.T) {
	table := NewAliasTable([]AliasRule{
		{Pattern: "@/*", Targets: []string{"/p/src/*"}},
		{Pattern: "@/lib/*", Targets: []string{"/p/lib/*"}},
		{Pattern: "@/lib/exact", Targets: []string{"/p/special"}},
		{Pattern: "#*", Targets: []string{"/p/first/*"}},
		{Pattern: "~*", Targets: []string{"/p/second/*"}},
	}, "")

	tests := []struct {
		specifier string
		want      string
		ok        bool
	}{
		{"@/lib/exact", "/p/special", true},
		{"@/lib/util", "/p/lib/util", true},
		{"@/main", "/p/src/main", true},
		{"#x", "/p/first/x", true},
		{"~x", "/p/second/x", true},
		{"react", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.specifier, func(t *testing.T) {
			got, ok := table.Match(tt.specifier)
			if ok != tt.ok {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.specifier, ok, tt.ok)
			}
			if ok && got[0] != tt.want {
				t.Errorf("Match(%q) = %v, want %s", tt.specifier, got, tt.want)
			}
		})
	}
}

func TestAliasTable_WildcardWithSuffix(t *testing.T) {
	table := NewAliasTable([]AliasRule{
		{Pattern: "icons/*.svg", Targets: []string{"/p/assets/*", "/p/fallback/*"}},
	}, "")

	got, ok := table.Match("icons/home.svg")
	if !ok || len(got) != 2 || got[0] != "/p/assets/home" || got[1] != "/p/fallback/home" {
		t.Errorf("Match() = %v, %v", got, ok)
	}
	if _, ok := table.Match("icons/home.png"); ok {
		t.Error("suffix mismatch should not match")
	}
}

func TestLoadAliasTable(t *testing.T) {
	dir := t.TempDir()
	tsconfig := `{
  "compilerOptions": {
    "baseUrl": "./src",
    "paths": {
      "@app/*": ["app/*"],
      "@shared": ["shared/index"]
    }
  }
}`
	if err := os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(tsconfig), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadAliasTable(dir, config.AliasesConfig{
		Tsconfig: "tsconfig.json",
		Rules:    []config.AliasRule{{Pattern: "@app/*", Targets: []string{"override/*"}}},
	})
	if err != nil {
		t.Fatalf("LoadAliasTable() error = %v", err)
	}

	root := filepath.ToSlash(dir)
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
	if table.BaseURL() != root+"/src" {
		t.Errorf("BaseURL() = %q, want %q", table.BaseURL(), root+"/src")
	}

	got, _ := table.Match("@app/x")
	if got[0] != root+"/override/x" {
		t.Errorf("configured rule should win the tie, got %v", got)
	}
	got, _ = table.Match("@shared")
	if got[0] != root+"/src/shared/index" {
		t.Errorf("tsconfig targets are relative to baseUrl, got %v", got)
	}
}

func TestLoadAliasTable_MissingTsconfig(t *testing.T) {
	table, err := LoadAliasTable(t.TempDir(), config.AliasesConfig{Tsconfig: "tsconfig.json", BaseURL: "lib"})
	if err != nil {
		t.Fatalf("LoadAliasTable() error = %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
	if table.BaseURL() == "" {
		t.Error("configured baseUrl should be kept")
	}
}

func TestLoadAliasTable_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AliasesConfig
	}{
		{"two wildcards", config.AliasesConfig{Rules: []config.AliasRule{{Pattern: "*/*", Targets: []string{"x"}}}}},
		{"no targets", config.AliasesConfig{Rules: []config.AliasRule{{Pattern: "@/*"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAliasTable(t.TempDir(), tt.cfg)
			if !errors.Is(err, errors.ConfigInvalid) {
				t.Errorf("error = %v, want CONFIG_INVALID", err)
			}
		})
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(`{"compilerOptions": {`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAliasTable(dir, config.AliasesConfig{Tsconfig: "tsconfig.json"}); !errors.Is(err, errors.ConfigInvalid) {
		t.Errorf("malformed tsconfig error = %v, want CONFIG_INVALID", err)
	}
}
