// Package grades turns a pupil's raw grade map into a validated grade set:
// sanitized display tokens, numeric values, derived composite grades and
// the qualification predicates of the governing regulations (Sek I, Sek II).
package grades

import (
	"fmt"
	"strconv"

	"github.com/wzreports/zeugnis/internal/catalog"
	"github.com/wzreports/zeugnis/internal/diag"
	"github.com/wzreports/zeugnis/internal/scale"
)

// AbiturTerm keys the Abitur final results in the grade store.
const AbiturTerm = "A"

// Error is a fatal grade-processing failure for one pupil. It aborts that
// pupil's report, never the whole batch.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func errf(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// KindFor selects the grading-scale variant for a class/stream/term.
// The comparisons are lexicographic on the class label, as everywhere else.
func KindFor(class catalog.ClassLabel, stream, term string) scale.Kind {
	if class.AtLeast("13") {
		if term == AbiturTerm {
			return scale.AbiturFinal
		}
		return scale.Qualiphase
	}
	if class.AtLeast("12") && stream == catalog.StreamGym {
		return scale.Qualiphase
	}
	return scale.Standard
}

// BadGrade records an illegal raw grade token for one subject.
type BadGrade struct {
	SID   string
	Token string
}

// SubjectGrade is one graded subject in catalog order.
type SubjectGrade struct {
	SID   string
	Value int
}

// Set is a validated grade set for one pupil. It is built once by Build
// and read-only afterwards.
type Set struct {
	Class  catalog.ClassLabel
	Stream string
	Term   string

	kind scale.Kind
	sc   scale.Scale
	cat  *catalog.Catalog

	display map[string]string // sid -> sanitized display token
	order   []string          // sids with a display entry, catalog order

	grades    []SubjectGrade // numeric grades, catalog order (composites appended)
	gradeIdx  map[string]int
	compOrder []string         // composite sids, catalog order
	comps     map[string][]int // composite -> numeric component values
	badComps  map[string][]string

	// XInfo holds the derived qualification fields (AVE, DEM, GS, Q12,
	// V, V13), each already in its printed form.
	XInfo map[string]string
	// BadGrades lists subjects whose raw token was illegal.
	BadGrades []BadGrade
	// Unused lists raw grade entries for subjects unknown to the catalog.
	Unused map[string]string

	ave    *scale.Frac
	dem    *scale.Frac
	sekI   *bool
	fives  []string
	sixes  []string
}

// Kind returns the scale variant the set was built with.
func (s *Set) Kind() scale.Kind { return s.kind }

// Scale returns the scale definition.
func (s *Set) Scale() scale.Scale { return s.sc }

// Catalog returns the subject catalog the set was built against.
func (s *Set) Catalog() *catalog.Catalog { return s.cat }

// Display returns the sanitized display token for a subject, with ok
// false if the subject has no entry at all.
func (s *Set) Display(sid string) (string, bool) {
	d, ok := s.display[sid]
	return d, ok
}

// Numeric returns the integer grade for a subject (composites included
// once derived).
func (s *Set) Numeric(sid string) (int, bool) {
	i, ok := s.gradeIdx[sid]
	if !ok {
		return 0, false
	}
	return s.grades[i].Value, true
}

// Ordered returns the numeric grades in catalog order.
func (s *Set) Ordered() []SubjectGrade {
	return s.grades
}

// Print renders a subject's grade for a report.
func (s *Set) Print(sid string) string {
	return s.sc.Print(s.display[sid])
}

// Build sanitizes the raw grades of one pupil against the subject catalog
// and derives composite grades. Sanitization failures are recorded on the
// set and degrade the subject to "no grade"; structural problems (missing
// compulsory grade, unchosen compulsory subject, empty compulsory
// composite) return an *Error which is fatal for this pupil only.
func Build(kind scale.Kind, cat *catalog.Catalog, stream, term string,
	raw map[string]string, rep *diag.Report) (*Set, error) {

	s := &Set{
		Class:    cat.Class,
		Stream:   stream,
		Term:     term,
		kind:     kind,
		sc:       scale.ByKind(kind),
		cat:      cat,
		display:  make(map[string]string),
		gradeIdx: make(map[string]int),
		comps:    make(map[string][]int),
		badComps: make(map[string][]string),
		XInfo:    make(map[string]string),
	}

	// Copy so consuming entries leaves the caller's map untouched.
	gmap := make(map[string]string, len(raw))
	for k, v := range raw {
		gmap[k] = v
	}

	optional := make(map[string]bool)
	type graded struct {
		sid         string
		componentOf string
	}
	var subjects []graded

	// Pass 1: sort the catalog entries for this stream into graded
	// subjects and composites.
	for _, e := range cat.Entries() {
		if e.NotGraded || !e.ForStream(stream) {
			continue
		}
		optional[e.SID] = e.Optional
		if e.Composite {
			s.comps[e.SID] = nil
			s.badComps[e.SID] = nil
			s.compOrder = append(s.compOrder, e.SID)
			continue
		}
		subjects = append(subjects, graded{sid: e.SID, componentOf: e.ComponentOf})
	}

	// Pass 2: sanitize the grades, diverting component grades into the
	// composite accumulators.
	for _, sub := range subjects {
		g, present := gmap[sub.sid]
		delete(gmap, sub.sid)
		if !present || g == "" {
			if !optional[sub.sid] {
				return nil, errf("Keine Note im Fach %s", sub.sid)
			}
			g = scale.Unchosen
		}
		if g == scale.Unchosen {
			if !optional[sub.sid] {
				return nil, errf("Fach %s ist ein Pflichtfach – es muss benotet werden", sub.sid)
			}
			s.setDisplay(sub.sid, scale.Unchosen)
			continue
		}
		display, gint, ok := s.sc.Sanitize(g)
		if !ok {
			s.BadGrades = append(s.BadGrades, BadGrade{SID: sub.sid, Token: g})
			if rep != nil {
				rep.Error("", sub.sid, "Ungültige Note im Fach %s: %s", sub.sid, g)
			}
			s.setDisplay(sub.sid, "")
			continue
		}
		s.setDisplay(sub.sid, display)
		switch sub.componentOf {
		case "":
			if gint >= 0 {
				s.addGrade(sub.sid, gint)
			}
		case catalog.NullComposite:
			// Grade does not count anywhere.
		default:
			if gint >= 0 {
				s.comps[sub.componentOf] = append(s.comps[sub.componentOf], gint)
			} else {
				s.badComps[sub.componentOf] = append(s.badComps[sub.componentOf], g)
			}
		}
	}

	// Raw entries for subjects the catalog does not grade.
	if len(gmap) > 0 {
		s.Unused = gmap
	}

	// A compulsory composite must have at least one component grade.
	for _, csid := range s.compOrder {
		if len(s.comps[csid]) == 0 && len(s.badComps[csid]) == 0 && !optional[csid] {
			return nil, errf("Fach %s ist ein Pflichtfach – es muss benotet werden", csid)
		}
	}

	s.addDerivedEntries()
	return s, nil
}

func (s *Set) setDisplay(sid, token string) {
	if _, dup := s.display[sid]; !dup {
		s.order = append(s.order, sid)
	}
	s.display[sid] = token
}

func (s *Set) addGrade(sid string, v int) {
	s.gradeIdx[sid] = len(s.grades)
	s.grades = append(s.grades, SubjectGrade{SID: sid, Value: v})
}

// addDerivedEntries computes the composite-subject grades: the arithmetic
// mean of the numeric components, rounded half-away-from-zero with exact
// fractions, zero-padded per scale. A composite without numeric components
// displays the "no grade" sentinel.
func (s *Set) addDerivedEntries() {
	for _, csid := range s.compOrder {
		glist := s.comps[csid]
		if len(glist) == 0 {
			s.setDisplay(csid, scale.NoGrade)
			continue
		}
		sum := 0
		for _, g := range glist {
			sum += g
		}
		rounded := scale.NewFrac(int64(sum), int64(len(glist))).Round(0)
		s.setDisplay(csid, scale.ZeroPad(rounded, s.sc.ZPad()))
		v, _ := strconv.Atoi(rounded)
		s.addGrade(csid, v)
	}
}

// Components returns the numeric component values collected for a
// composite subject.
func (s *Set) Components(csid string) []int {
	return s.comps[csid]
}
