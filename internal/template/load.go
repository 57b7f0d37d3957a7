package template

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Definition is one template-definition file: the key the report-type
// rules select it by, its display metadata, the physical template it
// stands for and the slot names scraped from that template.
type Definition struct {
	// Key is the selection key, e.g. "grades-SekII".
	Key string `yaml:"key"`
	// Name is the template-set name, e.g. "Notenzeugnis-SII".
	Name string `yaml:"name"`
	// File names the physical template this definition describes.
	File string `yaml:"file"`
	// Groups is the ordered list of subject-group tags the template
	// knows, most specific placement first.
	Groups []string `yaml:"groups"`
	// Slots is the complete declared slot-name set.
	Slots []string `yaml:"slots"`

	// Path is the definition file this was loaded from.
	Path string `yaml:"-"`
}

// Set is the loaded template-definition collection, keyed by Key.
type Set struct {
	byKey map[string]*Definition
}

// LoadDir reads every template definition below dir (**/*.yaml and
// **/*.yml).
func LoadDir(dir string) (*Set, error) {
	fsys := os.DirFS(dir)
	var paths []string
	for _, pattern := range []string{"**/*.yaml", "**/*.yml"} {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("Vorlagen-Verzeichnis %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	set := &Set{byKey: make(map[string]*Definition)}
	for _, rel := range paths {
		path := filepath.Join(dir, rel)
		def, err := loadDefinition(path)
		if err != nil {
			return nil, err
		}
		if _, dup := set.byKey[def.Key]; dup {
			return nil, &ConfigError{Message: fmt.Sprintf(
				"Vorlage %s mehrfach definiert (%s)", def.Key, path)}
		}
		set.byKey[def.Key] = def
	}
	return set, nil
}

func loadDefinition(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Vorlage nicht lesbar: %w", err)
	}
	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("Vorlage %s ungültig: %w", path, err)
	}
	if def.Key == "" {
		return nil, &ConfigError{Message: fmt.Sprintf(
			"Vorlage %s ohne Schlüssel", path)}
	}
	def.Path = path
	return &def, nil
}

// Lookup returns the definition for a selection key.
func (s *Set) Lookup(key string) (*Definition, error) {
	def, ok := s.byKey[key]
	if !ok {
		return nil, &ConfigError{Message: fmt.Sprintf(
			"Keine Vorlage für '%s'", key)}
	}
	return def, nil
}

// Keys returns the loaded selection keys.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.byKey))
	for k := range s.byKey {
		keys = append(keys, k)
	}
	return keys
}
