// Package abitur computes the Abitur final result: per-subject weighted
// points, the pass conditions and the final two-digit grade. All grade
// arithmetic is integer arithmetic; the legally defined formulas leave no
// room for floating-point rounding.
package abitur

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wzreports/zeugnis/internal/catalog"
	"github.com/wzreports/zeugnis/internal/diag"
	"github.com/wzreports/zeugnis/internal/grades"
	"github.com/wzreports/zeugnis/internal/scale"
)

// OralPrefix keys the oral re-examination ("Nachprüfung") grade of a
// written subject in the raw grade map.
const OralPrefix = "N_"

// noResult fills grade fields which carry no numeric value.
const noResult = "–––"

// gradeWords spells the digits of the final grade for the report text.
var gradeWords = map[string]string{
	"0": "null", "1": "eins", "2": "zwei", "3": "drei", "4": "vier",
	"5": "fünf", "6": "sechs", "7": "sieben", "8": "acht", "9": "neun",
}

// Slot is one exam subject in report order. The first four are the
// written subjects and carry an oral re-examination row.
type Slot struct {
	SID  string
	Name string
	Oral bool
}

// ExamSlots orders the chosen subjects by catalog order and validates
// the exam-type suffixes by position: subjects 1-3 written eA (".e"),
// subject 4 written gA (".g"), subjects 5-8 oral (".m"). Chosen subjects
// absent from the catalog are a configuration error.
func ExamSlots(cat *catalog.Catalog, chosen grades.AbiChoices) ([]Slot, error) {
	left := make(map[string]bool, len(chosen))
	for _, sid := range chosen {
		left[sid] = true
	}
	var slots []Slot
	i := 0
	for _, e := range cat.Entries() {
		if !left[e.SID] {
			continue
		}
		delete(left, e.SID)
		i++
		switch {
		case i < 4:
			if !strings.HasSuffix(e.SID, ".e") {
				return nil, fmt.Errorf(
					"%d. Fach: %s. Dieses muss eA (Endung '.e') sein.", i, e.SID)
			}
			slots = append(slots, Slot{SID: e.SID, Name: e.Name, Oral: true})
		case i == 4:
			if !strings.HasSuffix(e.SID, ".g") {
				return nil, fmt.Errorf(
					"%d. Fach: %s. Dieses muss gA + schriftlich (Endung '.g') sein.", i, e.SID)
			}
			slots = append(slots, Slot{SID: e.SID, Name: e.Name, Oral: true})
		case i <= 8:
			if !strings.HasSuffix(e.SID, ".m") {
				return nil, fmt.Errorf(
					"%d. Fach: %s. Dieses muss mündlich (Endung '.m') sein.", i, e.SID)
			}
			slots = append(slots, Slot{SID: e.SID, Name: e.Name})
		}
	}
	if len(left) > 0 {
		sids := make([]string, 0, len(left))
		for _, sid := range chosen {
			if left[sid] {
				sids = append(sids, sid)
			}
		}
		return nil, fmt.Errorf("Unerwarte Abifächer: %s", strings.Join(sids, ", "))
	}
	return slots, nil
}

// ExamGrade is one exam subject with its sanitized grade tokens.
type ExamGrade struct {
	SID   string
	Name  string // full catalog name, internal qualifier included
	Grade string // written/oral exam grade, "" if missing
	Oral  string // oral re-examination grade, "*" if none was taken
}

// BuildExamGrades sanitizes the raw Abitur grades against the ordered
// exam slots. Illegal tokens degrade to missing; the calculator reports
// them as missing results.
func BuildExamGrades(slots []Slot, raw map[string]string) []ExamGrade {
	sc := scale.ByKind(scale.AbiturFinal)
	sanitize := func(token string) string {
		if token == "" {
			return ""
		}
		display, _, ok := sc.Sanitize(token)
		if !ok {
			return ""
		}
		return display
	}
	egs := make([]ExamGrade, 0, len(slots))
	for _, sl := range slots {
		eg := ExamGrade{
			SID:   sl.SID,
			Name:  sl.Name,
			Grade: sanitize(raw[sl.SID]),
		}
		if sl.Oral {
			eg.Oral = sanitize(raw[OralPrefix+sl.SID])
			if eg.Oral == "" {
				eg.Oral = scale.NoGrade
			}
		}
		egs = append(egs, eg)
	}
	return egs
}

// Calc holds the grade components of one pupil's Abitur report.
type Calc struct {
	subjects []ExamGrade
	fields   map[string]string
}

// NewCalc prepares the calculator from the eight ordered exam grades.
func NewCalc(subjects []ExamGrade) (*Calc, error) {
	if len(subjects) != 8 {
		return nil, fmt.Errorf("Abifächeranzahl ≠ 8")
	}
	fields := make(map[string]string)
	for i, eg := range subjects {
		n := i + 1
		fields[fmt.Sprintf("F%d", n)] = displayName(eg.Name)
		g := eg.Grade
		if g == "" {
			g = "?"
		}
		fields[fmt.Sprintf("S%d", n)] = g
		if n <= 4 {
			if eg.Oral == scale.NoGrade {
				fields[fmt.Sprintf("M%d", n)] = scale.Dash
			} else {
				fields[fmt.Sprintf("M%d", n)] = eg.Oral
			}
		}
	}
	return &Calc{subjects: subjects, fields: fields}, nil
}

func displayName(name string) string {
	n, _, _ := strings.Cut(name, "|")
	return strings.TrimRight(n, " \t")
}

// Result is the full field set for an Abitur report.
type Result struct {
	// Fields maps report slot names (F1..F8, S1..S8, M1..M4, E1..E8,
	// TOTAL1, TOTAL2, Grade1, Grade2, GradeT) to their display text.
	Fields map[string]string
	// Pass reports whether all pass conditions are met.
	Pass bool
	// Reasons lists the failed pass conditions, empty when Pass is true.
	Reasons []string
}

// FullGrades computes the weighted points and the final grade. A subject
// without a numeric result is fatal for this pupil; failed pass
// conditions are not, they produce a failing report instead.
//
// Weighting: the first three written subjects count (written+oral)*6
// (erhöhtes Anforderungsniveau), the fourth (written+oral)*4, the four
// oral subjects written*4. Without an oral re-examination the written
// grade is doubled.
func (c *Calc) FullGrades(rep *diag.Report) (*Result, error) {
	fields := make(map[string]string, len(c.fields)+16)
	for k, v := range c.fields {
		fields[k] = v
	}
	var reasons, critical []string
	var eN []int
	n1, n2 := 0, 0
	for i, eg := range c.subjects {
		s, err := strconv.Atoi(eg.Grade)
		if err != nil {
			critical = append(critical, fmt.Sprintf("Kein Ergebnis in %s", eg.Name))
			s = 0
		}
		var e int
		if i < 4 {
			f := 6
			if i == 3 {
				f = 4
			}
			if oral, err := strconv.Atoi(eg.Oral); err == nil {
				e = s + oral
			} else {
				e = s + s
			}
			if e >= 10 {
				n1++
			}
			e *= f
		} else {
			e = 4 * s
			if e >= 20 {
				n2++
			}
		}
		fields[fmt.Sprintf("E%d", i+1)] = strconv.Itoa(e)
		eN = append(eN, e)
		if e == 0 {
			reasons = append(reasons, fmt.Sprintf("0 Punkte in %s", eg.Name))
		}
	}
	if len(critical) > 0 {
		for _, m := range critical {
			rep.Error("", "", "%s", m)
		}
		return nil, &grades.Error{Message: critical[0]}
	}

	t1 := eN[0] + eN[1] + eN[2] + eN[3]
	fields["TOTAL1"] = strconv.Itoa(t1)
	if t1 < 220 {
		reasons = append(reasons, "Punkte in schriftlichen Fächer < 220")
	}
	t2 := eN[4] + eN[5] + eN[6] + eN[7]
	fields["TOTAL2"] = strconv.Itoa(t2)
	if t2 < 80 {
		reasons = append(reasons, "Punkte in mündlichen Fächer < 80")
	}
	if n1 < 2 {
		reasons = append(reasons, "< 2 schriftliche Fächer mit mindestens 5 Punkten")
	}
	if n2 < 2 {
		reasons = append(reasons, "< 2 mündliche Fächer mit mindestens 5 Punkten")
	}

	if len(reasons) > 0 {
		fields["Grade1"] = noResult
		fields["Grade2"] = noResult
		fields["GradeT"] = noResult
		for _, r := range reasons {
			rep.Warn("", "", "Abitur nicht bestanden: %s", r)
		}
		return &Result{Fields: fields, Pass: false, Reasons: reasons}, nil
	}

	// Final grade by the 180-point formula. A perfect total lands below
	// 1,0; it is clamped to the best attainable grade.
	g180 := 1020 - t1 - t2
	g1 := strconv.Itoa(g180 / 180)
	var g2 string
	if g1 == "0" {
		g1 = "1"
		g2 = "0"
	} else {
		g2 = strconv.Itoa(g180 % 180 / 18)
	}
	fields["Grade1"] = g1
	fields["Grade2"] = g2
	fields["GradeT"] = gradeWords[g1] + ", " + gradeWords[g2]
	return &Result{Fields: fields, Pass: true}, nil
}

// FachAbiGrade calculates the Fachabitur grade from the point total,
// again with integer arithmetic (formula per Waldorf/Niedersachsen).
func FachAbiGrade(points int) string {
	g420 := 2380 - points*20 + 21
	return strconv.Itoa(g420/420) + "," + strconv.Itoa(g420%420/42)
}
