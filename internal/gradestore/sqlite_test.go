package gradestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "2015.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedPupil(t *testing.T, s *SQLiteStore, pid, first, last, class, stream string) {
	t.Helper()
	_, err := s.db.Exec(`
		INSERT INTO PUPILS (PID, FIRSTNAMES, LASTNAME, CLASS, STREAM)
		VALUES (?, ?, ?, ?, ?)`, pid, first, last, class, stream)
	require.NoError(t, err)
}

func TestPupilLookup(t *testing.T) {
	store := openTestStore(t)
	seedPupil(t, store, "p001", "Max", "Mustermann", "11", "RS")

	ctx := context.Background()
	p, err := store.Pupil(ctx, "p001")
	require.NoError(t, err)
	assert.Equal(t, "Max Mustermann", p.Name())
	assert.Equal(t, "11", p.Class)

	_, err = store.Pupil(ctx, "p999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassPupilsOrderAndStream(t *testing.T) {
	store := openTestStore(t)
	seedPupil(t, store, "p002", "Berta", "Zimmer", "11", "RS")
	seedPupil(t, store, "p001", "Anna", "Albers", "11", "Gym")
	seedPupil(t, store, "p003", "Carl", "Meier", "12", "RS")

	ctx := context.Background()
	pupils, err := store.ClassPupils(ctx, "11", "")
	require.NoError(t, err)
	require.Len(t, pupils, 2)
	assert.Equal(t, "Albers", pupils[0].LastName)
	assert.Equal(t, "Zimmer", pupils[1].LastName)

	pupils, err = store.ClassPupils(ctx, "11", "RS")
	require.NoError(t, err)
	require.Len(t, pupils, 1)
	assert.Equal(t, "p002", pupils[0].PID)
}

func TestClassSubjectsTableOrder(t *testing.T) {
	store := openTestStore(t)
	_, err := store.db.Exec(`
		INSERT INTO CLASS_SUBJECTS
			(CLASS, ORDERING, SID, NAME, GROUPS, STREAMS, OPTIONAL)
		VALUES
			('11', 2, 'Ma', 'Mathematik', 'S', '*', 0),
			('11', 1, 'De', 'Deutsch', 'S', '*', 0),
			('11', 3, 'La', 'Latein', 'S,V', 'Gym', 1)`)
	require.NoError(t, err)

	entries, err := store.ClassSubjects(context.Background(), "11")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "De", entries[0].SID)
	assert.Equal(t, "Ma", entries[1].SID)
	assert.Equal(t, []string{"S", "V"}, entries[2].Groups)
	assert.Equal(t, []string{"Gym"}, entries[2].Streams)
	assert.True(t, entries[2].Optional)
}

func TestSetGradeAndReadBack(t *testing.T) {
	store := openTestStore(t)
	seedPupil(t, store, "p001", "Max", "Mustermann", "11", "RS")
	ctx := context.Background()

	require.NoError(t, store.SetGrade(ctx, "p001", "2", "De", "3", "lehrer1", false))
	require.NoError(t, store.SetGrade(ctx, "p001", "2", "Ma", "nt", "lehrer2", false))

	rec, err := store.Grades(ctx, "p001", "2")
	require.NoError(t, err)
	assert.Equal(t, "11", rec.Class)
	assert.Equal(t, map[string]string{"De": "3", "Ma": "nt"}, rec.Grades)

	_, err = store.Grades(ctx, "p001", "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetGradeLastWriterDiscipline(t *testing.T) {
	store := openTestStore(t)
	seedPupil(t, store, "p001", "Max", "Mustermann", "11", "RS")
	ctx := context.Background()

	require.NoError(t, store.SetGrade(ctx, "p001", "2", "De", "3", "lehrer1", false))
	// Same user may correct their own entry.
	require.NoError(t, store.SetGrade(ctx, "p001", "2", "De", "2", "lehrer1", false))

	err := store.SetGrade(ctx, "p001", "2", "De", "1", "lehrer2", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wurde von lehrer1 eingetragen")
	assert.Contains(t, err.Error(), "Änderung durch lehrer2 nicht erlaubt")

	// Force overrides the discipline; the new writer takes over.
	require.NoError(t, store.SetGrade(ctx, "p001", "2", "De", "1", "lehrer2", true))
	err = store.SetGrade(ctx, "p001", "2", "De", "2", "lehrer1", false)
	require.Error(t, err)

	rec, err := store.Grades(ctx, "p001", "2")
	require.NoError(t, err)
	assert.Equal(t, "1", rec.Grades["De"])
}

func TestGradeLogNewestFirst(t *testing.T) {
	store := openTestStore(t)
	seedPupil(t, store, "p001", "Max", "Mustermann", "11", "RS")
	ctx := context.Background()

	require.NoError(t, store.SetGrade(ctx, "p001", "2", "De", "4", "lehrer1", false))
	require.NoError(t, store.SetGrade(ctx, "p001", "2", "De", "3", "lehrer1", false))

	log, err := store.GradeLog(ctx, "p001", "2", "De")
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "3", log[0].Grade)
	assert.Equal(t, "4", log[1].Grade)
	assert.False(t, log[0].Timestamp.Before(log[1].Timestamp))
}

func TestGroupGrades(t *testing.T) {
	store := openTestStore(t)
	seedPupil(t, store, "p001", "Berta", "Zimmer", "11", "RS")
	seedPupil(t, store, "p002", "Anna", "Albers", "11", "RS")
	ctx := context.Background()

	require.NoError(t, store.SetGrade(ctx, "p001", "2", "De", "3", "l", false))
	require.NoError(t, store.SetGrade(ctx, "p002", "2", "De", "2", "l", false))

	records, err := store.GroupGrades(ctx, "11", "RS", "2")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "p002", records[0].PID)
	assert.Equal(t, "p001", records[1].PID)
}

func TestAbiSubjects(t *testing.T) {
	store := openTestStore(t)
	_, err := store.db.Exec(`
		INSERT INTO ABI_SUBJECTS (PID, SUBJECTS)
		VALUES ('p001', 'De.e,En.e,Ge.e,Ma.g,Bio.m,Ch.m,Ku.m,Sp.m')`)
	require.NoError(t, err)

	ctx := context.Background()
	subjects, err := store.AbiSubjects(ctx, "p001")
	require.NoError(t, err)
	assert.Len(t, subjects, 8)
	assert.Equal(t, "De.e", subjects[0])

	subjects, err = store.AbiSubjects(ctx, "p999")
	require.NoError(t, err)
	assert.Nil(t, subjects)
}
