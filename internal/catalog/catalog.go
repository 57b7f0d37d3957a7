// Package catalog models the subject catalog of a school class: which
// subjects exist, how they appear on reports, which streams they apply to
// and how composite subjects relate to their components.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NullComposite marks a component entry whose grade contributes to no
// composite and does not count anywhere.
const NullComposite = "/"

// ConfigError is a structural misconfiguration of the subject catalog.
// It is fatal for the affected class, not for other classes.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// Entry describes one subject of a class catalog.
type Entry struct {
	// SID is the school-internal subject code. It may carry a dotted
	// suffix encoding the exam type, e.g. "Ma.g".
	SID string `yaml:"sid"`
	// Name is the display name. Anything after a "|" is an internal
	// qualifier and is stripped for report output.
	Name string `yaml:"name"`
	// Groups lists the report groups the subject may be placed in,
	// most specific first.
	Groups []string `yaml:"groups"`
	// Composite marks an entry whose grade is the average of its
	// component entries. Composite entries carry no teachers.
	Composite bool `yaml:"composite"`
	// ComponentOf names the composite this entry's grade feeds, or
	// NullComposite for a grade which does not count.
	ComponentOf string `yaml:"component_of"`
	// Streams restricts the entry to the listed streams; "*" applies
	// to all.
	Streams []string `yaml:"streams"`
	// Optional subjects may be left ungraded (treated as not chosen).
	Optional bool `yaml:"optional"`
	// NotGraded excludes the subject from grade reports entirely.
	NotGraded bool `yaml:"not_graded"`
	// NotText excludes the subject from text reports.
	NotText bool `yaml:"not_text"`
}

// DisplayName returns the report form of the subject name: everything
// after the first "|" is dropped, trailing whitespace stripped.
func (e Entry) DisplayName() string {
	name, _, _ := strings.Cut(e.Name, "|")
	return strings.TrimRight(name, " \t")
}

// ForStream reports whether the entry applies to the given stream.
func (e Entry) ForStream(stream string) bool {
	for _, s := range e.Streams {
		if s == AllStreams || s == stream {
			return true
		}
	}
	return false
}

// Catalog is the ordered subject list of one class. The order is the
// catalog order from the class-subject table; grade processing and slot
// allocation both depend on it.
type Catalog struct {
	Class   ClassLabel
	entries []Entry
	bySID   map[string]int
}

// New builds a catalog from entries, checking structural invariants.
func New(class ClassLabel, entries []Entry) (*Catalog, error) {
	c := &Catalog{
		Class:   class,
		entries: entries,
		bySID:   make(map[string]int, len(entries)),
	}
	composites := make(map[string]bool)
	for i, e := range entries {
		if _, dup := c.bySID[e.SID]; dup {
			return nil, &ConfigError{Message: fmt.Sprintf(
				"Fach %s kommt in Klasse-Fächer-Tabelle mehrmals vor", e.SID)}
		}
		c.bySID[e.SID] = i
		if e.Composite {
			composites[e.SID] = true
		}
	}
	for _, e := range entries {
		if e.ComponentOf == "" || e.ComponentOf == NullComposite {
			continue
		}
		if !composites[e.ComponentOf] {
			return nil, &ConfigError{Message: fmt.Sprintf(
				"Fach %s verweist auf unbekanntes Sammelfach %s", e.SID, e.ComponentOf)}
		}
	}
	return c, nil
}

// Entries returns the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Lookup returns the entry for a subject id.
func (c *Catalog) Lookup(sid string) (Entry, bool) {
	i, ok := c.bySID[sid]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// SubjectName returns the display name for a subject id, or the id itself
// if the subject is unknown.
func (c *Catalog) SubjectName(sid string) string {
	if e, ok := c.Lookup(sid); ok {
		return e.DisplayName()
	}
	return sid
}

// catalogFile is the on-disk YAML form of a class catalog.
type catalogFile struct {
	Class    string  `yaml:"class"`
	Subjects []Entry `yaml:"subjects"`
}

// Load reads a class catalog from a YAML file, validates it against the
// embedded schema and checks structural invariants.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Fächer-Tabelle nicht lesbar: %w", err)
	}
	return Parse(raw)
}

// Parse builds a catalog from YAML content.
func Parse(raw []byte) (*Catalog, error) {
	if errs := ValidateYAML(raw); len(errs) > 0 {
		return nil, &ConfigError{Message: strings.Join(errs, "; ")}
	}
	var cf catalogFile
	if err := yaml.Unmarshal(raw, &cf); err != nil {
		return nil, fmt.Errorf("Fächer-Tabelle ungültig: %w", err)
	}
	if cf.Class == "" {
		return nil, &ConfigError{Message: "Fächer-Tabelle ohne Klasse"}
	}
	return New(ClassLabel(cf.Class), cf.Subjects)
}
