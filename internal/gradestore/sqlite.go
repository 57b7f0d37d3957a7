package gradestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wzreports/zeugnis/internal/catalog"
)

// SQLiteStore is the per-school-year grade database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the grade database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("Notendatenbank %s: %w", path, err)
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore wraps an open database handle, creating the schema if
// necessary.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS PUPILS (
		PID        TEXT PRIMARY KEY,
		FIRSTNAMES TEXT NOT NULL,
		LASTNAME   TEXT NOT NULL,
		CLASS      TEXT NOT NULL,
		STREAM     TEXT NOT NULL DEFAULT '',
		DOB_D      TEXT NOT NULL DEFAULT '',
		POB        TEXT NOT NULL DEFAULT '',
		ENTRY_D    TEXT NOT NULL DEFAULT '',
		EXIT_D     TEXT NOT NULL DEFAULT '',
		HOME       TEXT NOT NULL DEFAULT '',
		QUALI_D    TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS CLASS_SUBJECTS (
		CLASS        TEXT NOT NULL,
		ORDERING     INTEGER NOT NULL,
		SID          TEXT NOT NULL,
		NAME         TEXT NOT NULL,
		GROUPS       TEXT NOT NULL DEFAULT '',
		COMPOSITE    INTEGER NOT NULL DEFAULT 0,
		COMPONENT_OF TEXT NOT NULL DEFAULT '',
		STREAMS      TEXT NOT NULL DEFAULT '*',
		OPTIONAL     INTEGER NOT NULL DEFAULT 0,
		NOT_GRADED   INTEGER NOT NULL DEFAULT 0,
		NOT_TEXT     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (CLASS, SID)
	);
	CREATE TABLE IF NOT EXISTS GRADES (
		PID         TEXT NOT NULL,
		CLASS       TEXT NOT NULL,
		STREAM      TEXT NOT NULL DEFAULT '',
		TERM        TEXT NOT NULL,
		GRADES      TEXT NOT NULL DEFAULT '',
		REPORT_TYPE TEXT NOT NULL DEFAULT '',
		ISSUE_D     TEXT NOT NULL DEFAULT '',
		GRADES_D    TEXT NOT NULL DEFAULT '',
		QUALI       TEXT NOT NULL DEFAULT '',
		COMMENT     TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (PID, TERM)
	);
	CREATE TABLE IF NOT EXISTS GRADE_LOG (
		PID       TEXT NOT NULL,
		TERM      TEXT NOT NULL,
		SID       TEXT NOT NULL,
		GRADE     TEXT NOT NULL,
		USER      TEXT NOT NULL,
		TIMESTAMP TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS GRADE_LOG_CELL
		ON GRADE_LOG (PID, TERM, SID, TIMESTAMP);
	CREATE TABLE IF NOT EXISTS ABI_SUBJECTS (
		PID      TEXT PRIMARY KEY,
		SUBJECTS TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Pupil(ctx context.Context, pid string) (*Pupil, error) {
	query := `
	SELECT PID, FIRSTNAMES, LASTNAME, CLASS, STREAM, DOB_D, POB,
	       ENTRY_D, EXIT_D, HOME, QUALI_D
	FROM PUPILS WHERE PID = ?`
	p := &Pupil{}
	err := s.db.QueryRowContext(ctx, query, pid).Scan(
		&p.PID, &p.FirstNames, &p.LastName, &p.Class, &p.Stream,
		&p.DOB, &p.POB, &p.Entry, &p.Exit, &p.Home, &p.QualiDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Schüler %s: %w", pid, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLiteStore) ClassPupils(ctx context.Context, class, stream string) ([]*Pupil, error) {
	query := `
	SELECT PID, FIRSTNAMES, LASTNAME, CLASS, STREAM, DOB_D, POB,
	       ENTRY_D, EXIT_D, HOME, QUALI_D
	FROM PUPILS WHERE CLASS = ?`
	args := []any{class}
	if stream != "" {
		query += ` AND STREAM = ?`
		args = append(args, stream)
	}
	query += ` ORDER BY LASTNAME, FIRSTNAMES`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pupils []*Pupil
	for rows.Next() {
		p := &Pupil{}
		if err := rows.Scan(
			&p.PID, &p.FirstNames, &p.LastName, &p.Class, &p.Stream,
			&p.DOB, &p.POB, &p.Entry, &p.Exit, &p.Home, &p.QualiDate); err != nil {
			return nil, err
		}
		pupils = append(pupils, p)
	}
	return pupils, rows.Err()
}

func (s *SQLiteStore) ClassSubjects(ctx context.Context, class string) ([]catalog.Entry, error) {
	query := `
	SELECT SID, NAME, GROUPS, COMPOSITE, COMPONENT_OF, STREAMS,
	       OPTIONAL, NOT_GRADED, NOT_TEXT
	FROM CLASS_SUBJECTS WHERE CLASS = ? ORDER BY ORDERING`
	rows, err := s.db.QueryContext(ctx, query, class)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []catalog.Entry
	for rows.Next() {
		var e catalog.Entry
		var groups, streams string
		if err := rows.Scan(&e.SID, &e.Name, &groups, &e.Composite,
			&e.ComponentOf, &streams, &e.Optional, &e.NotGraded, &e.NotText); err != nil {
			return nil, err
		}
		e.Groups = splitList(groups)
		e.Streams = splitList(streams)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func (s *SQLiteStore) Grades(ctx context.Context, pid, term string) (*GradeRecord, error) {
	query := `
	SELECT PID, CLASS, STREAM, TERM, GRADES, REPORT_TYPE,
	       ISSUE_D, GRADES_D, QUALI, COMMENT
	FROM GRADES WHERE PID = ? AND TERM = ?`
	return s.scanGradeRow(s.db.QueryRowContext(ctx, query, pid, term))
}

func (s *SQLiteStore) GroupGrades(ctx context.Context, class, stream, term string) ([]*GradeRecord, error) {
	query := `
	SELECT g.PID, g.CLASS, g.STREAM, g.TERM, g.GRADES, g.REPORT_TYPE,
	       g.ISSUE_D, g.GRADES_D, g.QUALI, g.COMMENT
	FROM GRADES g JOIN PUPILS p ON p.PID = g.PID
	WHERE g.CLASS = ? AND g.TERM = ?`
	args := []any{class, term}
	if stream != "" {
		query += ` AND g.STREAM = ?`
		args = append(args, stream)
	}
	query += ` ORDER BY p.LASTNAME, p.FIRSTNAMES`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*GradeRecord
	for rows.Next() {
		r, err := s.scanGradeRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanGradeRow(row rowScanner) (*GradeRecord, error) {
	r := &GradeRecord{}
	var gstring string
	err := row.Scan(&r.PID, &r.Class, &r.Stream, &r.Term, &gstring,
		&r.ReportType, &r.IssueDate, &r.GradesDate, &r.Quali, &r.Comment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Grades, err = DecodeGrades(gstring)
	if err != nil {
		return nil, fmt.Errorf(
			"Fehlerhafte Notendaten für Schüler PID=%s, TERM=%s: %w",
			r.PID, r.Term, err)
	}
	return r, nil
}

// SetGrade writes one grade cell. The grade log carries the writer of
// every cell; a different user may only overwrite with force set.
func (s *SQLiteStore) SetGrade(ctx context.Context, pid, term, sid, grade, user string, force bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var lastUser string
	err = tx.QueryRowContext(ctx, `
		SELECT USER FROM GRADE_LOG
		WHERE PID = ? AND TERM = ? AND SID = ?
		ORDER BY TIMESTAMP DESC LIMIT 1`, pid, term, sid).Scan(&lastUser)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err == nil && lastUser != user && !force {
		return fmt.Errorf(
			"Note im Fach %s für Schüler %s wurde von %s eingetragen – Änderung durch %s nicht erlaubt",
			sid, pid, lastUser, user)
	}

	var gstring string
	err = tx.QueryRowContext(ctx, `
		SELECT GRADES FROM GRADES WHERE PID = ? AND TERM = ?`,
		pid, term).Scan(&gstring)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		grades := map[string]string{sid: grade}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO GRADES (PID, CLASS, STREAM, TERM, GRADES)
			SELECT PID, CLASS, STREAM, ?, ? FROM PUPILS WHERE PID = ?`,
			term, EncodeGrades(grades), pid)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		grades, derr := DecodeGrades(gstring)
		if derr != nil {
			return fmt.Errorf(
				"Fehlerhafte Notendaten für Schüler PID=%s, TERM=%s: %w", pid, term, derr)
		}
		if grades == nil {
			grades = make(map[string]string)
		}
		grades[sid] = grade
		_, err = tx.ExecContext(ctx, `
			UPDATE GRADES SET GRADES = ? WHERE PID = ? AND TERM = ?`,
			EncodeGrades(grades), pid, term)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO GRADE_LOG (PID, TERM, SID, GRADE, USER, TIMESTAMP)
		VALUES (?, ?, ?, ?, ?, ?)`,
		pid, term, sid, grade, user, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GradeLog(ctx context.Context, pid, term, sid string) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT PID, TERM, SID, GRADE, USER, TIMESTAMP FROM GRADE_LOG
		WHERE PID = ? AND TERM = ? AND SID = ?
		ORDER BY TIMESTAMP DESC`, pid, term, sid)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		var ts string
		if err := rows.Scan(&e.PID, &e.Term, &e.SID, &e.Grade, &e.User, &ts); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) AbiSubjects(ctx context.Context, pid string) ([]string, error) {
	var subjects string
	err := s.db.QueryRowContext(ctx, `
		SELECT SUBJECTS FROM ABI_SUBJECTS WHERE PID = ?`, pid).Scan(&subjects)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return splitList(subjects), nil
}
