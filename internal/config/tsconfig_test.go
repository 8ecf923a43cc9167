package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTsconfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "tsconfig.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write tsconfig: %v", err)
	}
	return path
}

func TestLoadTsconfig_PathsKeepOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeTsconfig(t, dir, `{
		"compilerOptions": {
			"baseUrl": "src",
			"paths": {
				"@z/*": ["z/*"],
				"@a/*": ["a/*", "fallback/a/*"],
				"@func": ["utils/functions/functions.ts"]
			}
		}
	}`)

	ts, err := LoadTsconfig(path)
	if err != nil {
		t.Fatalf("LoadTsconfig() error = %v", err)
	}
	if ts.BaseURL != filepath.Join(dir, "src") {
		t.Errorf("BaseURL = %q, want %q", ts.BaseURL, filepath.Join(dir, "src"))
	}

	want := []string{"@z/*", "@a/*", "@func"}
	if len(ts.Paths) != len(want) {
		t.Fatalf("len(Paths) = %d, want %d", len(ts.Paths), len(want))
	}
	for i, pattern := range want {
		if ts.Paths[i].Pattern != pattern {
			t.Errorf("Paths[%d].Pattern = %q, want %q", i, ts.Paths[i].Pattern, pattern)
		}
	}
	if len(ts.Paths[1].Targets) != 2 {
		t.Errorf("Paths[1].Targets = %v", ts.Paths[1].Targets)
	}
}

func TestLoadTsconfig_Missing(t *testing.T) {
	ts, err := LoadTsconfig(filepath.Join(t.TempDir(), "tsconfig.json"))
	if err != nil || ts != nil {
		t.Errorf("LoadTsconfig() = %v, %v; want nil, nil", ts, err)
	}
}

func TestLoadTsconfig_NoCompilerOptions(t *testing.T) {
	path := writeTsconfig(t, t.TempDir(), `{"include": ["src"]}`)
	ts, err := LoadTsconfig(path)
	if err != nil {
		t.Fatalf("LoadTsconfig() error = %v", err)
	}
	if ts.BaseURL != "" || len(ts.Paths) != 0 {
		t.Errorf("expected empty tsconfig, got %+v", ts)
	}
}

func TestLoadTsconfig_CommentsAndTrailingCommas(t *testing.T) {
	dir := t.TempDir()
	path := writeTsconfig(t, dir, `{
  // Generated by tsc --init
  "compilerOptions": {
    /* Modules */
    "strict": true,
    "baseUrl": ".", // resolve bare names from the project
    "paths": {
      "@app/*": ["src/*",],
    },
  },
}
`)

	ts, err := LoadTsconfig(path)
	if err != nil {
		t.Fatalf("LoadTsconfig() error = %v", err)
	}
	if ts.BaseURL != dir {
		t.Errorf("BaseURL = %q, want %q", ts.BaseURL, dir)
	}
	if len(ts.Paths) != 1 || ts.Paths[0].Pattern != "@app/*" || len(ts.Paths[0].Targets) != 1 {
		t.Errorf("Paths = %+v", ts.Paths)
	}
}

func TestLoadTsconfig_Malformed(t *testing.T) {
	tests := map[string]string{
		"unterminated":   `{"compilerOptions": {"paths": {`,
		"paths not list": `{"compilerOptions": {"paths": {"@a/*": "a/*"}}}`,
		"paths array":    `{"compilerOptions": {"paths": ["a"]}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeTsconfig(t, t.TempDir(), content)
			_, err := LoadTsconfig(path)
			if err == nil {
				t.Fatal("LoadTsconfig() should fail")
			}
			if !IsConfigError(err) {
				t.Errorf("error type = %T, want *ConfigError", err)
			}
		})
	}
}
