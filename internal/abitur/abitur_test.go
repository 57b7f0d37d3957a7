package abitur

import (
	"strings"
	"testing"

	"github.com/wzreports/zeugnis/internal/catalog"
	"github.com/wzreports/zeugnis/internal/diag"
	"github.com/wzreports/zeugnis/internal/grades"
)

func examGrades(written [4][2]string, oral [4]string) []ExamGrade {
	subjects := make([]ExamGrade, 0, 8)
	names := []string{"Deutsch", "Englisch", "Geschichte", "Mathematik"}
	for i, wg := range written {
		subjects = append(subjects, ExamGrade{
			SID:   names[i][:2] + ".e",
			Name:  names[i],
			Grade: wg[0],
			Oral:  wg[1],
		})
	}
	oralNames := []string{"Biologie", "Chemie", "Kunst", "Sport"}
	for i, g := range oral {
		subjects = append(subjects, ExamGrade{
			SID:   oralNames[i][:2] + ".m",
			Name:  oralNames[i],
			Grade: g,
		})
	}
	return subjects
}

func TestFullGradesPass(t *testing.T) {
	// E1=(10+05)*6=90, E2=(08+06)*6=84, E3=(05+04)*6=54, E4=(03+03)*4=24,
	// E5..E8=4*15=60. TOTAL1=252, TOTAL2=240, g180=528 -> grade 2,9.
	calc, err := NewCalc(examGrades(
		[4][2]string{{"10", "05"}, {"08", "06"}, {"05", "04"}, {"03", "03"}},
		[4]string{"15", "15", "15", "15"}))
	if err != nil {
		t.Fatal(err)
	}
	rep := diag.NewReport()
	result, err := calc.FullGrades(rep)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Pass {
		t.Fatalf("expected pass, reasons: %v", result.Reasons)
	}
	want := map[string]string{
		"E1": "90", "E2": "84", "E3": "54", "E4": "24",
		"E5": "60", "E6": "60", "E7": "60", "E8": "60",
		"TOTAL1": "252", "TOTAL2": "240",
		"Grade1": "2", "Grade2": "9", "GradeT": "zwei, neun",
	}
	for k, v := range want {
		if result.Fields[k] != v {
			t.Errorf("%s = %q, want %q", k, result.Fields[k], v)
		}
	}
}

func TestFullGradesClampAtTop(t *testing.T) {
	// Perfect grades: TOTAL1=660, TOTAL2=240, g180=120, 120/180=0.
	// The final grade is clamped to 1,0.
	calc, err := NewCalc(examGrades(
		[4][2]string{{"15", "15"}, {"15", "15"}, {"15", "15"}, {"15", "15"}},
		[4]string{"15", "15", "15", "15"}))
	if err != nil {
		t.Fatal(err)
	}
	result, err := calc.FullGrades(diag.NewReport())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Pass {
		t.Fatalf("perfect grades must pass: %v", result.Reasons)
	}
	if result.Fields["Grade1"] != "1" || result.Fields["Grade2"] != "0" {
		t.Errorf("grade = %s,%s, want 1,0", result.Fields["Grade1"], result.Fields["Grade2"])
	}
	if result.Fields["GradeT"] != "eins, null" {
		t.Errorf("GradeT = %q", result.Fields["GradeT"])
	}
}

func TestFullGradesZeroPointsFail(t *testing.T) {
	// A single zero-point result fails regardless of the totals.
	calc, err := NewCalc(examGrades(
		[4][2]string{{"15", "15"}, {"15", "15"}, {"15", "15"}, {"15", "15"}},
		[4]string{"00", "15", "15", "15"}))
	if err != nil {
		t.Fatal(err)
	}
	result, err := calc.FullGrades(diag.NewReport())
	if err != nil {
		t.Fatal(err)
	}
	if result.Pass {
		t.Fatal("zero points in a subject must fail")
	}
	found := false
	for _, r := range result.Reasons {
		if strings.Contains(r, "0 Punkte") && strings.Contains(r, "Biologie") {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons should name the zero-point subject: %v", result.Reasons)
	}
	if result.Fields["Grade1"] != "–––" {
		t.Errorf("failed report grade = %q", result.Fields["Grade1"])
	}
}

func TestFullGradesLowTotals(t *testing.T) {
	// Weak but nonzero grades trip the totals and count conditions.
	calc, err := NewCalc(examGrades(
		[4][2]string{{"02", "02"}, {"02", "02"}, {"02", "02"}, {"02", "02"}},
		[4]string{"02", "02", "02", "02"}))
	if err != nil {
		t.Fatal(err)
	}
	result, err := calc.FullGrades(diag.NewReport())
	if err != nil {
		t.Fatal(err)
	}
	if result.Pass {
		t.Fatal("weak grades must fail")
	}
	var low1, low2, under1, under2 bool
	for _, r := range result.Reasons {
		switch r {
		case "Punkte in schriftlichen Fächer < 220":
			low1 = true
		case "Punkte in mündlichen Fächer < 80":
			low2 = true
		case "< 2 schriftliche Fächer mit mindestens 5 Punkten":
			under1 = true
		case "< 2 mündliche Fächer mit mindestens 5 Punkten":
			under2 = true
		}
	}
	if !low1 || !low2 || !under1 || !under2 {
		t.Errorf("expected all four threshold reasons, got %v", result.Reasons)
	}
}

func TestFullGradesMissingResult(t *testing.T) {
	subjects := examGrades(
		[4][2]string{{"10", "05"}, {"08", "06"}, {"05", "04"}, {"03", "03"}},
		[4]string{"15", "15", "15", "15"})
	subjects[2].Grade = ""
	calc, err := NewCalc(subjects)
	if err != nil {
		t.Fatal(err)
	}
	rep := diag.NewReport()
	if _, err := calc.FullGrades(rep); err == nil {
		t.Fatal("a missing result must be fatal")
	}
	if !rep.HasErrors() {
		t.Error("the missing result must be reported")
	}
}

func TestNewCalcFields(t *testing.T) {
	subjects := examGrades(
		[4][2]string{{"10", "05"}, {"08", "*"}, {"05", "04"}, {"03", "03"}},
		[4]string{"15", "15", "15", "15"})
	subjects[0].Name = "Deutsch |eA"
	calc, err := NewCalc(subjects)
	if err != nil {
		t.Fatal(err)
	}
	if calc.fields["F1"] != "Deutsch" {
		t.Errorf("F1 = %q, internal qualifier must be stripped", calc.fields["F1"])
	}
	if calc.fields["S1"] != "10" {
		t.Errorf("S1 = %q", calc.fields["S1"])
	}
	if calc.fields["M2"] != "––––––" {
		t.Errorf("M2 without oral result = %q", calc.fields["M2"])
	}
	if calc.fields["M1"] != "05" {
		t.Errorf("M1 = %q", calc.fields["M1"])
	}
}

func TestNewCalcRequiresEight(t *testing.T) {
	if _, err := NewCalc(nil); err == nil {
		t.Error("fewer than eight subjects must be rejected")
	}
}

func TestFachAbiGrade(t *testing.T) {
	tests := []struct {
		points int
		want   string
	}{
		{80, "1,9"},
		{60, "2,8"},
		{20, "4,7"},
	}
	for _, tt := range tests {
		if got := FachAbiGrade(tt.points); got != tt.want {
			t.Errorf("FachAbiGrade(%d) = %q, want %q", tt.points, got, tt.want)
		}
	}
}

func abiCatalog(t *testing.T, sids []string) *catalog.Catalog {
	t.Helper()
	entries := make([]catalog.Entry, 0, len(sids))
	for _, sid := range sids {
		entries = append(entries, catalog.Entry{SID: sid, Name: sid, Streams: []string{"*"}})
	}
	cat, err := catalog.New("13", entries)
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestExamSlots(t *testing.T) {
	sids := []string{"De.e", "En.e", "Ge.e", "Ma.g", "Bio.m", "Ch.m", "Ku.m", "Sp.m"}
	cat := abiCatalog(t, sids)
	chosen, err := grades.ParseAbiChoices(sids, false)
	if err != nil {
		t.Fatal(err)
	}
	slots, err := ExamSlots(cat, chosen)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 8 {
		t.Fatalf("slots = %d", len(slots))
	}
	for i, sl := range slots {
		wantOral := i < 4
		if sl.Oral != wantOral {
			t.Errorf("slot %d oral = %v", i, sl.Oral)
		}
	}
}

func TestExamSlotsSuffixErrors(t *testing.T) {
	tests := []struct {
		name string
		sids []string
		want string
	}{
		{
			"written slot without .e",
			[]string{"De.m", "En.e", "Ge.e", "Ma.g", "Bio.m", "Ch.m", "Ku.m", "Sp.m"},
			"eA (Endung '.e')",
		},
		{
			"fourth slot without .g",
			[]string{"De.e", "En.e", "Ge.e", "Ma.e", "Bio.m", "Ch.m", "Ku.m", "Sp.m"},
			"gA + schriftlich (Endung '.g')",
		},
		{
			"oral slot without .m",
			[]string{"De.e", "En.e", "Ge.e", "Ma.g", "Bio.g", "Ch.m", "Ku.m", "Sp.m"},
			"mündlich (Endung '.m')",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := abiCatalog(t, tt.sids)
			chosen, err := grades.ParseAbiChoices(tt.sids, false)
			if err != nil {
				t.Fatal(err)
			}
			_, err = ExamSlots(cat, chosen)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestExamSlotsUnknownChoice(t *testing.T) {
	sids := []string{"De.e", "En.e", "Ge.e", "Ma.g", "Bio.m", "Ch.m", "Ku.m", "Sp.m"}
	cat := abiCatalog(t, sids[:7])
	chosen, err := grades.ParseAbiChoices(sids, false)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ExamSlots(cat, chosen)
	if err == nil || !strings.Contains(err.Error(), "Unerwarte Abifächer: Sp.m") {
		t.Errorf("error = %v", err)
	}
}

func TestBuildExamGrades(t *testing.T) {
	slots := []Slot{
		{SID: "De.e", Name: "Deutsch", Oral: true},
		{SID: "Bio.m", Name: "Biologie"},
	}
	raw := map[string]string{
		"De.e":   "10",
		"N_De.e": "05",
		"Bio.m":  "12",
	}
	egs := BuildExamGrades(slots, raw)
	if egs[0].Grade != "10" || egs[0].Oral != "05" {
		t.Errorf("written grades = %+v", egs[0])
	}
	if egs[1].Grade != "12" || egs[1].Oral != "" {
		t.Errorf("oral grades = %+v", egs[1])
	}
	// Missing oral re-examination degrades to the no-grade sentinel.
	egs2 := BuildExamGrades(slots, map[string]string{"De.e": "10"})
	if egs2[0].Oral != "*" {
		t.Errorf("missing oral = %q, want *", egs2[0].Oral)
	}
}
