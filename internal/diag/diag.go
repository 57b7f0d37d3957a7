// Package diag provides shared diagnostic types used across the zeugnis codebase.
// This package is at the bottom of the dependency graph and should not import
// any other internal packages to avoid circular dependencies.
package diag

import "fmt"

// Severity level constants.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event is a single diagnostic raised during grade processing.
// User-facing messages are German; they appear in reports and logs.
type Event struct {
	Pupil    string // pupil id, empty for class-level events
	Subject  string // subject id, empty if not subject-specific
	Message  string
	Severity string // error, warning, info
}

// Report collects diagnostic events during a processing run. It replaces a
// global logging sink: every core call appends to a Report supplied by the
// caller, and the caller decides what to do with the events.
type Report struct {
	events []Event
}

// NewReport returns an empty collector.
func NewReport() *Report {
	return &Report{}
}

// Error records an error-level event.
func (r *Report) Error(pupil, subject, format string, args ...any) {
	r.add(SeverityError, pupil, subject, format, args...)
}

// Warn records a warning-level event.
func (r *Report) Warn(pupil, subject, format string, args ...any) {
	r.add(SeverityWarning, pupil, subject, format, args...)
}

// Info records an info-level event.
func (r *Report) Info(pupil, subject, format string, args ...any) {
	r.add(SeverityInfo, pupil, subject, format, args...)
}

func (r *Report) add(sev, pupil, subject, format string, args ...any) {
	r.events = append(r.events, Event{
		Pupil:    pupil,
		Subject:  subject,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	})
}

// Events returns the collected events in insertion order.
func (r *Report) Events() []Event {
	return r.events
}

// HasErrors reports whether any error-level event was collected.
func (r *Report) HasErrors() bool {
	for _, e := range r.events {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Merge appends all events from other.
func (r *Report) Merge(other *Report) {
	if other != nil {
		r.events = append(r.events, other.events...)
	}
}
