package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/wzreports/zeugnis/internal/abitur"
	"github.com/wzreports/zeugnis/internal/catalog"
	"github.com/wzreports/zeugnis/internal/diag"
	"github.com/wzreports/zeugnis/internal/grades"
)

// AbiturReport is the assembled data of one pupil's Abitur report.
type AbiturReport struct {
	PID    string
	Pass   bool
	Fields map[string]string
}

// BuildAbitur assembles the Abitur final-result report for one pupil:
// demographics plus the calculator's field set. The grades are read from
// the Abitur term of the grade store.
func (b *Builder) BuildAbitur(ctx context.Context, pid string, rep *diag.Report) (*AbiturReport, error) {
	pupil, err := b.store.Pupil(ctx, pid)
	if err != nil {
		return nil, err
	}
	gdata, err := b.store.Grades(ctx, pid, grades.AbiturTerm)
	if err != nil {
		return nil, err
	}
	chosenRaw, err := b.store.AbiSubjects(ctx, pid)
	if err != nil {
		return nil, err
	}
	chosen, err := grades.ParseAbiChoices(chosenRaw, false)
	if err != nil {
		return nil, fmt.Errorf("ABI_SUBJECTS: %s (%s)", err, pupil.Name())
	}

	entries, err := b.store.ClassSubjects(ctx, gdata.Class)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(catalog.ClassLabel(gdata.Class), entries)
	if err != nil {
		return nil, err
	}
	slots, err := abitur.ExamSlots(cat, chosen)
	if err != nil {
		return nil, err
	}
	calc, err := abitur.NewCalc(abitur.BuildExamGrades(slots, gdata.Grades))
	if err != nil {
		return nil, err
	}
	result, err := calc.FullGrades(rep)
	if err != nil {
		return nil, err
	}

	gmap := make(map[string]string)
	b.pupilFields(gmap, pupil)
	gmap["CLASS"] = gdata.Class
	gmap["STREAM"] = gdata.Stream
	gmap["TERM"] = gdata.Term
	gmap["CYEAR"] = catalog.ClassLabel(gdata.Class).Year()
	if gmap["ISSUE_D"], err = printDate(gdata.IssueDate, b.cfg.DateFormat); err != nil {
		return nil, err
	}
	if gmap["GRADES_D"], err = printDate(gdata.GradesDate, b.cfg.DateFormat); err != nil {
		return nil, err
	}
	gmap["SCHOOL"] = b.cfg.SchoolName
	gmap["SCHOOLBIG"] = strings.ToUpper(b.cfg.SchoolName)
	gmap["schoolyear"] = fmt.Sprintf("%d", b.cfg.SchoolYear)
	gmap["SCHOOLYEAR"] = b.cfg.PrintSchoolYear()
	for k, v := range result.Fields {
		gmap[k] = v
	}

	return &AbiturReport{PID: pid, Pass: result.Pass, Fields: gmap}, nil
}
