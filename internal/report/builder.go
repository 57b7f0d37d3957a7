// Package report assembles the flat slot-to-text mapping a grade report
// is rendered from: pupil demographics, school constants, the validated
// grades in their template slots and the qualification fields.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wzreports/zeugnis/internal/catalog"
	"github.com/wzreports/zeugnis/internal/config"
	"github.com/wzreports/zeugnis/internal/diag"
	"github.com/wzreports/zeugnis/internal/grades"
	"github.com/wzreports/zeugnis/internal/gradestore"
	"github.com/wzreports/zeugnis/internal/scale"
	"github.com/wzreports/zeugnis/internal/slots"
	"github.com/wzreports/zeugnis/internal/template"
)

// Report is the assembled data of one pupil's grade report.
type Report struct {
	PID string
	// Type is the resolved report type.
	Type *template.Resolved
	// Template is the selected template definition.
	Template *template.Definition
	// Fields is the flat slot-name to display-text mapping.
	Fields map[string]string
}

// Builder orchestrates report assembly for single pupils and for whole
// class/stream groups.
type Builder struct {
	store     gradestore.Store
	cfg       *config.Config
	templates *template.Set
}

// NewBuilder returns a builder over the given store and template set.
func NewBuilder(store gradestore.Store, cfg *config.Config, templates *template.Set) *Builder {
	return &Builder{store: store, cfg: cfg, templates: templates}
}

// group renders a class/stream pair the way the validity tables key it.
func group(class, stream string) string {
	if stream == "" {
		return class
	}
	return class + "." + stream
}

// BuildOne assembles the report data for a single pupil and term.
// Failures concerning only this pupil are returned as the error; the
// collected diagnostics carry the non-fatal findings.
func (b *Builder) BuildOne(ctx context.Context, pid, term string, rep *diag.Report) (*Report, error) {
	gdata, err := b.store.Grades(ctx, pid, term)
	if err != nil {
		return nil, err
	}
	pupil, err := b.store.Pupil(ctx, pid)
	if err != nil {
		return nil, err
	}
	rtype := gdata.ReportType
	if rtype == "" {
		tt, ok := template.DefaultType(term, group(gdata.Class, gdata.Stream))
		if !ok {
			return nil, fmt.Errorf("Kein Zeugnistyp für Schüler %s", pid)
		}
		rtype = tt.Type
	}
	return b.build(ctx, pupil, gdata, rtype, rep)
}

// BuildGroup assembles the reports of a class/stream group for a term,
// segregated by resolved report type so that pupils needing different
// templates end up in different batches. pidFilter, if non-empty,
// restricts the run to the listed pupils. Per-pupil failures are
// collected and do not abort the batch.
func (b *Builder) BuildGroup(ctx context.Context, class, stream, term string,
	pidFilter []string, rep *diag.Report) (map[string][]*Report, error) {

	records, err := b.store.GroupGrades(ctx, class, stream, term)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(pidFilter))
	for _, pid := range pidFilter {
		wanted[pid] = true
	}

	batches := make(map[string][]*Report)
	var noType []string
	for _, gdata := range records {
		if len(wanted) > 0 && !wanted[gdata.PID] {
			continue
		}
		rtype := gdata.ReportType
		if rtype == "" {
			tt, ok := template.DefaultType(term, group(gdata.Class, gdata.Stream))
			if !ok {
				noType = append(noType, gdata.PID)
				continue
			}
			rtype = tt.Type
		}
		pupil, err := b.store.Pupil(ctx, gdata.PID)
		if err != nil {
			rep.Error(gdata.PID, "", "%s", err)
			continue
		}
		r, err := b.build(ctx, pupil, gdata, rtype, rep)
		if err != nil {
			rep.Error(pupil.Name(), "", "%s", err)
			continue
		}
		if r == nil {
			// Excluded by the scale's inclusion rule.
			continue
		}
		batches[rtype] = append(batches[rtype], r)
	}
	if len(noType) > 0 {
		rep.Error("", "", "Kein Zeugnistyp für Schüler %s", strings.Join(noType, ", "))
	}
	if len(batches) == 0 {
		rep.Info("", "", "Notenzeugnisse: keine Schüler")
	} else {
		rep.Info("", "", "Notenzeugnisse für Klasse %s wurden erstellt", group(class, stream))
	}
	return batches, nil
}

// build assembles one pupil's report mapping. A nil report without error
// means the pupil is excluded from the run.
func (b *Builder) build(ctx context.Context, pupil *gradestore.Pupil,
	gdata *gradestore.GradeRecord, rtype string, rep *diag.Report) (*Report, error) {

	resolved, err := template.Resolve(rtype, template.Info{
		Class:     catalog.ClassLabel(gdata.Class),
		Level:     gdata.Stream,
		Quali:     gdata.Quali,
		Term:      gdata.Term,
		PupilName: pupil.Name(),
	})
	if err != nil {
		return nil, err
	}
	def, err := b.templates.Lookup(resolved.TemplateKey)
	if err != nil {
		return nil, err
	}

	entries, err := b.store.ClassSubjects(ctx, gdata.Class)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(catalog.ClassLabel(gdata.Class), entries)
	if err != nil {
		return nil, err
	}

	kind := grades.KindFor(cat.Class, gdata.Stream, gdata.Term)
	set, err := grades.Build(kind, cat, gdata.Stream, gdata.Term, gdata.Grades, rep)
	if err != nil {
		return nil, err
	}

	var chosen []string
	if kind != scale.Standard {
		chosen, err = b.store.AbiSubjects(ctx, pupil.PID)
		if err != nil {
			return nil, err
		}
	}
	if !set.ReportFail(gdata.Term, rtype, pupil.Name(), chosen, rep) {
		return nil, nil
	}

	gmap := make(map[string]string)
	b.pupilFields(gmap, pupil)

	// The grade record's CLASS and STREAM overwrite the pupil's, they
	// can differ if the pupil has moved.
	gmap["CLASS"] = gdata.Class
	gmap["STREAM"] = gdata.Stream
	gmap["TERM"] = gdata.Term
	gmap["REPORT_TYPE"] = rtype
	gmap["QUALI"] = gdata.Quali
	gmap["COMMENT"] = gdata.Comment
	gmap["CYEAR"] = catalog.ClassLabel(gdata.Class).Year()
	gmap["issue_d"] = gdata.IssueDate
	if gmap["ISSUE_D"], err = printDate(gdata.IssueDate, b.cfg.DateFormat); err != nil {
		return nil, err
	}
	if gmap["GRADES_D"], err = printDate(gdata.GradesDate, b.cfg.DateFormat); err != nil {
		return nil, err
	}

	// Qualification fields. Computing them also fills XInfo.
	if kind == scale.Standard {
		set.GS()
		set.Q12()
		set.V()
	} else {
		set.V13(pupil.Name(), chosen, rep)
	}
	keys := make([]string, 0, len(set.XInfo))
	for k := range set.XInfo {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		gmap[k] = set.XInfo[k]
	}

	// Slot allocation.
	slotSet := slots.Parse(def.Slots)
	subjects := b.slotSubjects(cat, gdata.Stream)
	smap, err := slotSet.Allocate(def.Groups, def.Path, subjects,
		set.Print, pupil.PID,
		slots.Fillers{
			NoSubject: b.cfg.Fillers.NoSubject,
			Ungraded:  b.cfg.Fillers.Ungraded,
		}, rep)
	if err != nil {
		return nil, err
	}
	for k, v := range smap {
		gmap[k] = v
	}

	if len(set.Unused) > 0 {
		var items []string
		for sid, g := range set.Unused {
			items = append(items, sid+"="+g)
		}
		sort.Strings(items)
		rep.Warn(pupil.Name(), "",
			"Noten für %s, die nicht im Zeugnis erscheinen:\n  %s",
			pupil.Name(), strings.Join(items, "; "))
	}

	gmap["SCHOOL"] = b.cfg.SchoolName
	gmap["SCHOOLBIG"] = strings.ToUpper(b.cfg.SchoolName)
	gmap["schoolyear"] = fmt.Sprintf("%d", b.cfg.SchoolYear)
	gmap["SCHOOLYEAR"] = b.cfg.PrintSchoolYear()
	gmap["Zeugnis"] = resolved.Name
	gmap["ZEUGNIS"] = strings.ToUpper(resolved.Name)
	resolved.Finish(gmap)

	return &Report{PID: pupil.PID, Type: resolved, Template: def, Fields: gmap}, nil
}

// pupilFields merges the demographic fields in both vocabularies: the
// raw column names (dates printed) and the P.* template names (missing
// dates degrade to the NoDate placeholder).
func (b *Builder) pupilFields(gmap map[string]string, p *gradestore.Pupil) {
	layout := b.cfg.DateFormat
	gmap["PID"] = p.PID
	gmap["FIRSTNAMES"] = p.FirstNames
	gmap["LASTNAME"] = p.LastName
	gmap["CLASS"] = p.Class
	gmap["STREAM"] = p.Stream
	gmap["POB"] = p.POB
	gmap["HOME"] = p.Home
	for field, iso := range map[string]string{
		"DOB_D":   p.DOB,
		"ENTRY_D": p.Entry,
		"EXIT_D":  p.Exit,
		"QUALI_D": p.QualiDate,
	} {
		s, err := printDate(iso, layout)
		if err != nil {
			s = ""
		}
		gmap[field] = s
	}

	gmap["P.VORNAMEN"] = p.FirstNames
	gmap["P.NACHNAME"] = p.LastName
	gmap["P.G.DAT"] = dateConv(p.DOB, layout)
	gmap["P.G.ORT"] = p.POB
	gmap["P.E.DAT"] = dateConv(p.Entry, layout)
	gmap["P.X.DAT"] = dateConv(p.Exit, layout)
	gmap["P.HOME"] = p.Home
	gmap["P.Q.DAT"] = dateConv(p.QualiDate, layout)
}

// slotSubjects lists the catalog entries offered for slot allocation, in
// catalog order: graded subjects and composites, but not components
// (their grades only count inside their composite).
func (b *Builder) slotSubjects(cat *catalog.Catalog, stream string) []slots.Subject {
	var subjects []slots.Subject
	for _, e := range cat.Entries() {
		if e.NotGraded || !e.ForStream(stream) || e.ComponentOf != "" {
			continue
		}
		subjects = append(subjects, slots.Subject{
			SID:    e.SID,
			Name:   e.Name,
			Groups: e.Groups,
		})
	}
	return subjects
}
