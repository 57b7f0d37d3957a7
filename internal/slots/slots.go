// Package slots assigns graded subjects to the slots a report template
// declares: numbered group slots "G.<tag>.<index>" with their paired
// subject-name slots "S.<tag>.<index>", and grade-only slots "G.<sid>".
package slots

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wzreports/zeugnis/internal/diag"
)

// TemplateError means the template itself is unusable: it declares a
// slot group the report type does not know, or has too few numbered
// slots for a group.
type TemplateError struct {
	Message string
}

func (e *TemplateError) Error() string { return e.Message }

// ConfigError means the subject catalog and the template disagree: a
// subject matches no group, or more than one, of the template's groups.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// OverflowError is raised when a group has more eligible subjects than
// numbered slots. It is a TemplateError carrying the offending subject.
type OverflowError struct {
	Tag  string
	SID  string
	Done map[string]string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf(
		"Kein Platz mehr für Fach mit Kürzel %s in Fachgruppe %s. Bisher: %v",
		e.SID, e.Tag, e.Done)
}

// SlotSet is the slot declaration of one template, computed once per
// template and read-only thereafter.
type SlotSet struct {
	// tags maps each group tag to its declared indices, sorted in
	// reverse order. Indices are consumed from the end of the list, so
	// subjects land in the lowest indices and leftover fill goes to the
	// highest. The indices are strings, not necessarily contiguous.
	tags map[string][]string
	// gradeOnly holds the subject ids with a bare "G.<sid>" slot.
	gradeOnly map[string]bool
}

// Parse extracts the grade slots from a template's complete key set.
func Parse(allKeys []string) *SlotSet {
	s := &SlotSet{
		tags:      make(map[string][]string),
		gradeOnly: make(map[string]bool),
	}
	seen := make(map[string]map[string]bool)
	for _, key := range allKeys {
		if !strings.HasPrefix(key, "G.") {
			continue
		}
		parts := strings.Split(key, ".")
		switch len(parts) {
		case 3:
			tag, index := parts[1], parts[2]
			if seen[tag] == nil {
				seen[tag] = make(map[string]bool)
			}
			if !seen[tag][index] {
				seen[tag][index] = true
				s.tags[tag] = append(s.tags[tag], index)
			}
		case 2:
			s.gradeOnly[parts[1]] = true
		}
	}
	for _, ilist := range s.tags {
		sort.Sort(sort.Reverse(sort.StringSlice(ilist)))
	}
	return s
}

// Tags returns the declared group tags.
func (s *SlotSet) Tags() []string {
	tags := make([]string, 0, len(s.tags))
	for t := range s.tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Subject is one catalog entry offered for slot allocation, in catalog
// order, with its eligible report groups most specific first.
type Subject struct {
	SID    string
	Name   string
	Groups []string
}

// Fillers configures the text placed in slots no subject claimed.
type Fillers struct {
	// NoSubject fills both halves of an unused numbered slot pair.
	NoSubject string
	// Ungraded fills a grade-only slot whose subject has no grade.
	Ungraded string
}

// Allocate walks the subjects in catalog order and assigns each to a
// slot. templateGroups is the ordered group list the report type
// declares; a declared template group missing from it suppresses its
// subjects silently only when nil-mapped, while an undeclared group in
// the template is a TemplateError. printGrade renders a subject's grade;
// empty means "not chosen" (no report entry), "?" means the grade is
// missing (placed, but warned about).
func (s *SlotSet) Allocate(templateGroups []string, templatePath string,
	subjects []Subject, printGrade func(sid string) string,
	pupilID string, fill Fillers, rep *diag.Report) (map[string]string, error) {

	// Partition the declared slots by the report type's group list.
	// A group the template does not mention suppresses its subjects.
	tag2indexes := make(map[string][]string, len(templateGroups))
	taken := make(map[string]bool)
	for _, tag := range templateGroups {
		if ilist, ok := s.tags[tag]; ok {
			tag2indexes[tag] = append([]string(nil), ilist...)
		} else {
			tag2indexes[tag] = nil
		}
		taken[tag] = true
	}
	for tag := range s.tags {
		if !taken[tag] {
			return nil, &TemplateError{Message: fmt.Sprintf(
				"Ungültiger Fachgruppe (%s) in Vorlage:\n  %s", tag, templatePath)}
		}
	}
	gradeOnly := make(map[string]bool, len(s.gradeOnly))
	for sid := range s.gradeOnly {
		gradeOnly[sid] = true
	}

	gmap := make(map[string]string)
	for _, sub := range subjects {
		g := printGrade(sub.SID)
		if g == "?" {
			rep.Warn(pupilID, sub.SID, "Schüler %s: keine Note im Fach %s", pupilID, sub.Name)
		}
		if gradeOnly[sub.SID] {
			delete(gradeOnly, sub.SID)
			if g == "" {
				g = fill.Ungraded
			}
			gmap["G."+sub.SID] = g
			continue
		}
		if g == "" {
			// Subject not chosen, no report entry.
			continue
		}
		done := false
		for _, rg := range sub.Groups {
			ilist, ok := tag2indexes[rg]
			if !ok {
				continue
			}
			if done {
				return nil, &ConfigError{Message: fmt.Sprintf(
					"Fach %s passt zu mehr als eine Fach-Gruppe", sub.Name)}
			}
			if ilist == nil {
				// Group suppressed for this report type.
				done = true
				continue
			}
			if len(ilist) == 0 {
				return nil, &OverflowError{Tag: rg, SID: sub.SID, Done: gmap}
			}
			i := ilist[len(ilist)-1]
			tag2indexes[rg] = ilist[:len(ilist)-1]
			gmap["G."+rg+"."+i] = g
			name, _, _ := strings.Cut(sub.Name, "|")
			gmap["S."+rg+"."+i] = strings.TrimRight(name, " \t")
			done = true
		}
		if !done {
			return nil, &ConfigError{Message: fmt.Sprintf(
				"Keine passende Fach-Gruppe für Fach %s", sub.Name)}
		}
	}

	// Fill whatever no subject claimed.
	for sid := range gradeOnly {
		gmap["G."+sid] = fill.Ungraded
	}
	for tag, ilist := range tag2indexes {
		for _, i := range ilist {
			gmap["G."+tag+"."+i] = fill.NoSubject
			gmap["S."+tag+"."+i] = fill.NoSubject
		}
	}
	return gmap, nil
}
