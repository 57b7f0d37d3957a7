package template

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDefinition(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const sekIDef = `key: grades-SekI
name: Notenzeugnis-SI
file: Notenzeugnis-SI.odt
groups: [S, K, V]
slots:
  - LASTNAME
  - G.S.01
  - G.S.02
  - G.V.01
  - G.Sp
`

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "sek1/grades-SekI.yaml", sekIDef)
	writeDefinition(t, dir, "sek2/grades-SekII.yml", "key: grades-SekII\nname: Notenzeugnis-SII\n")

	set, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Keys()) != 2 {
		t.Errorf("keys = %v", set.Keys())
	}
	def, err := set.Lookup("grades-SekI")
	if err != nil {
		t.Fatal(err)
	}
	if def.Name != "Notenzeugnis-SI" || len(def.Slots) != 5 || len(def.Groups) != 3 {
		t.Errorf("definition = %+v", def)
	}
	if def.Path == "" {
		t.Error("the source path must be recorded")
	}
}

func TestLoadDirDuplicateKey(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "a.yaml", "key: grades-SekI\n")
	writeDefinition(t, dir, "b.yaml", "key: grades-SekI\n")
	if _, err := LoadDir(dir); err == nil {
		t.Error("duplicate keys must be rejected")
	}
}

func TestLoadDirMissingKey(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "a.yaml", "name: Notenzeugnis-SI\n")
	if _, err := LoadDir(dir); err == nil {
		t.Error("a definition without a key must be rejected")
	}
}

func TestLookupUnknownKey(t *testing.T) {
	set, err := LoadDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := set.Lookup("grades-Abi"); err == nil {
		t.Error("unknown keys must be rejected")
	}
}
