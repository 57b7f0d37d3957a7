// Package gradestore is the persistence layer for pupils, class subjects
// and grades: a store abstraction and its per-school-year SQLite
// implementation. The grade-computation core only ever sees the
// abstraction.
package gradestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wzreports/zeugnis/internal/catalog"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("gradestore: not found")

// Pupil is one pupil row. Dates are ISO (2006-01-02) strings, empty when
// unknown.
type Pupil struct {
	PID        string
	FirstNames string
	LastName   string
	Class      string
	Stream     string
	DOB        string // date of birth
	POB        string // place of birth
	Entry      string // date of school entry
	Exit       string // date of leaving
	Home       string
	QualiDate  string // date of the Sek II qualification
}

// Name returns the pupil's full name as used in messages.
func (p *Pupil) Name() string {
	return strings.TrimSpace(p.FirstNames + " " + p.LastName)
}

// GradeRecord is the grade entry of one pupil for one term. CLASS and
// STREAM are stored with the grades; they can differ from the pupil row
// if the pupil has moved.
type GradeRecord struct {
	PID        string
	Class      string
	Stream     string
	Term       string
	Grades     map[string]string
	ReportType string
	IssueDate  string // ISO
	GradesDate string // ISO
	Quali      string
	Comment    string
}

// LogEntry is one grade-log row: who wrote which grade when.
type LogEntry struct {
	PID       string
	Term      string
	SID       string
	Grade     string
	User      string
	Timestamp time.Time
}

// Store is the persistence abstraction the report builder works against.
type Store interface {
	Pupil(ctx context.Context, pid string) (*Pupil, error)
	// ClassPupils lists the pupils of a class, optionally restricted to
	// one stream ("" for all), ordered by name.
	ClassPupils(ctx context.Context, class, stream string) ([]*Pupil, error)
	// ClassSubjects returns the subject catalog entries of a class in
	// table order.
	ClassSubjects(ctx context.Context, class string) ([]catalog.Entry, error)
	Grades(ctx context.Context, pid, term string) (*GradeRecord, error)
	// GroupGrades lists the grade records of a class/stream group for a
	// term, in pupil order.
	GroupGrades(ctx context.Context, class, stream, term string) ([]*GradeRecord, error)
	// SetGrade writes one grade cell under the last-writer discipline:
	// an update is accepted only if user matches the previous writer of
	// that cell, or force is set.
	SetGrade(ctx context.Context, pid, term, sid, grade, user string, force bool) error
	// GradeLog returns the log entries for one cell, newest first.
	GradeLog(ctx context.Context, pid, term, sid string) ([]LogEntry, error)
	// AbiSubjects returns a pupil's chosen Abitur subjects in choice
	// order.
	AbiSubjects(ctx context.Context, pid string) ([]string, error)
	Close() error
}

// DecodeGrades parses the persisted grade string "sid=g;sid=g" into a
// mapping. An empty string decodes to nil (entry present, no data yet).
func DecodeGrades(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	grades := make(map[string]string)
	for _, item := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("ungültiger Noten-Eintrag %q", item)
		}
		grades[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return grades, nil
}

// EncodeGrades renders a grade mapping in the persisted form. Keys are
// sorted so the encoding is deterministic.
func EncodeGrades(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	items := make([]string, 0, len(keys))
	for _, k := range keys {
		items = append(items, k+"="+m[k])
	}
	return strings.Join(items, ";")
}
