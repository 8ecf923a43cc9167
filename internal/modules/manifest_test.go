package modules

import (
	"os"
	"path/filepath"
	"testing"

	"deadwood/internal/errors"
)

const testPackageJSON = `{
  "name": "app",
  "dependencies": {"react": "^18.0.0", "lodash": "^4.17.21"},
  "devDependencies": {"typescript": "^5.0.0", "react": "^18.0.0"},
  "peerDependencies": {"react-dom": "^18.0.0"},
  "optionalDependencies": {"fsevents": "^2.3.0"}
}`

func TestLoadManifest(t *testing.T) {
	p := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(p, []byte(testPackageJSON), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(p, ManifestOptions{})
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if !m.Found {
		t.Error("Found = false")
	}
	if len(m.Dependencies) != 2 || m.Dependencies[0].Name != "lodash" || m.Dependencies[1].Name != "react" {
		t.Errorf("Dependencies = %+v", m.Dependencies)
	}

	all, err := LoadManifest(p, ManifestOptions{IncludeDev: true, IncludePeer: true, IncludeOptional: true})
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	want := map[string]DependencySection{
		"fsevents":   SectionOptional,
		"lodash":     SectionDependencies,
		"react":      SectionDependencies,
		"react-dom":  SectionPeer,
		"typescript": SectionDev,
	}
	if len(all.Dependencies) != len(want) {
		t.Fatalf("Dependencies = %+v", all.Dependencies)
	}
	for _, d := range all.Dependencies {
		if want[d.Name] != d.Section {
			t.Errorf("%s section = %s, want %s", d.Name, d.Section, want[d.Name])
		}
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "package.json"), ManifestOptions{})
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Found || len(m.Dependencies) != 0 {
		t.Errorf("missing manifest should be empty: %+v", m)
	}
}

func TestLoadManifest_Malformed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(p, []byte(`{"dependencies": [}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(p, ManifestOptions{}); !errors.Is(err, errors.ConfigInvalid) {
		t.Errorf("error = %v, want CONFIG_INVALID", err)
	}
}
