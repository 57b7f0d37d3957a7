package grades

import (
	"strings"

	"github.com/wzreports/zeugnis/internal/diag"
	"github.com/wzreports/zeugnis/internal/scale"
)

// Core subjects for the Ausgleich (compensation) rules. A deficit in one
// of these can only be compensated by another of them.
var dmfSubjects = map[string]bool{
	"De": true, "Ma": true, "En": true, "Fr": true, "Ru": true, "La": true,
}

// demSubjects are averaged for the RS-Abschluss qualification.
var demSubjects = [...]string{"De", "En", "Ma"}

// baseSID strips the exam-type suffix ("Ma.g" -> "Ma").
func baseSID(sid string) string {
	b, _, _ := strings.Cut(sid, ".")
	return b
}

// Ave returns the average over all numeric grades, or ok false if there
// are none. The truncated two-decimal rendering is recorded in XInfo
// under "AVE".
//
// The AVO-Sek I regulations call for truncated averages; the second
// decimal place is what gets printed.
func (s *Set) Ave() (scale.Frac, bool) {
	if s.ave != nil {
		return *s.ave, true
	}
	if len(s.grades) == 0 {
		return scale.Frac{}, false
	}
	var sum int64
	for _, sg := range s.grades {
		sum += int64(sg.Value)
	}
	avg := scale.NewFrac(sum, int64(len(s.grades)))
	s.ave = &avg
	s.XInfo["AVE"] = avg.Truncate(2)
	return avg, true
}

// Dem returns the average over De, En and Ma, or ok false if any of the
// three grades is missing. Recorded in XInfo under "DEM".
func (s *Set) Dem() (scale.Frac, bool) {
	if s.dem != nil {
		return *s.dem, true
	}
	var sum int64
	for _, sid := range demSubjects {
		g, ok := s.Numeric(sid)
		if !ok {
			return scale.Frac{}, false
		}
		sum += int64(g)
	}
	dem := scale.NewFrac(sum, int64(len(demSubjects)))
	s.dem = &dem
	s.XInfo["DEM"] = dem.Truncate(2)
	return dem, true
}

// SekI performs the general pass test on the standard scale: not more
// than two grades "5" or one "6", with the Ausgleich compensation rules.
// A compensating subject is consumed; it cannot cover two deficits.
func (s *Set) SekI() bool {
	if s.sekI != nil {
		return *s.sekI
	}
	res := s.computeSekI()
	s.sekI = &res
	return res
}

func (s *Set) computeSekI() bool {
	s.fives = nil
	s.sixes = nil
	for _, sg := range s.grades {
		switch sg.Value {
		case 5:
			s.fives = append(s.fives, sg.SID)
		case 6:
			s.sixes = append(s.sixes, sg.SID)
		}
	}

	used := make(map[string]bool)
	// compensate looks for an unused subject graded at or better than
	// the given grade. A deficit in a core subject needs a core-subject
	// compensator.
	compensate := func(sid string, grade int) bool {
		for _, sg := range s.grades {
			if sg.Value <= grade {
				if !dmfSubjects[baseSID(sid)] || dmfSubjects[baseSID(sg.SID)] {
					if !used[sg.SID] {
						used[sg.SID] = true
						return true
					}
				}
			}
		}
		return false
	}

	if len(s.sixes) > 0 {
		if len(s.fives) > 0 || len(s.sixes) > 1 {
			return false
		}
		sid := s.sixes[0]
		if compensate(sid, 2) {
			return true
		}
		return compensate(sid, 3) && compensate(sid, 3)
	}

	if len(s.fives) < 2 {
		return true
	}
	if len(s.fives) > 2 {
		return false
	}
	// Try the core-subject deficit first, it is the harder one to cover.
	first, second := s.fives[0], s.fives[1]
	if !dmfSubjects[baseSID(first)] {
		first, second = second, first
	}
	return compensate(first, 3) && compensate(second, 3)
}

// GS determines the Gleichstellungsvermerk qualification. Only a
// Hauptschulabschluss equivalence is possible: "HS" or "-".
func (s *Set) GS() string {
	xgs := "-"
	if s.SekI() {
		if ave, ok := s.Ave(); ok && ave.AtMost(4, 1) {
			xgs = "HS"
		}
	}
	s.XInfo["GS"] = xgs
	return xgs
}

// Q12 determines the qualification at the end of the 12th year for the
// RS and HS streams: "HS", "RS", "Erw" or "-".
func (s *Set) Q12() string {
	q12 := "-"
	if s.SekI() {
		ave, aok := s.Ave()
		dem, dok := s.Dem()
		if aok && dok && ave.AtMost(4, 1) {
			switch s.Stream {
			case "HS":
				q12 = "HS"
			case "RS":
				if ave.AtMost(3, 1) && dem.AtMost(3, 1) {
					q12 = "Erw"
				} else {
					q12 = "RS"
				}
			}
		}
	}
	s.XInfo["Q12"] = q12
	return q12
}

// V determines, for the gymnasial stream in the 11th class, the
// qualification for advancement to the 12th: "✓" or "-".
func (s *Set) V() string {
	v := "-"
	if strings.HasPrefix(string(s.Class), "11") && s.Stream == "Gym" && s.SekI() {
		if ave, ok := s.Ave(); ok && ave.AtMost(3, 1) {
			v = "✓"
		}
	}
	s.XInfo["V"] = v
	return v
}

// ReportFail applies the scale's inclusion rule for a report run. It
// returns false if the pupil must be excluded from the run; warnings
// about failed qualifications go to the report either way.
// chosenAbi is only consulted on the Qualifikationsphase scale.
func (s *Set) ReportFail(term, rtype, pupilName string, chosenAbi []string, rep *diag.Report) bool {
	switch s.kind {
	case scale.Standard:
		if rtype == "Zeugnis" {
			if term == "2" && s.Stream == "Gym" {
				if s.V() == "-" {
					rep.Warn(pupilName, "", "%s wird nicht versetzt", pupilName)
				}
			}
			// Included even on failure.
		} else if rtype == "Abschluss" {
			if s.Q12() == "-" {
				rep.Warn(pupilName, "", "%s erlangt den Abschluss nicht", pupilName)
				return false
			}
		}
	case scale.Qualiphase:
		if term == "2" {
			if rtype == "Zeugnis" {
				if s.V13(pupilName, chosenAbi, rep) != "Erw" {
					rep.Warn(pupilName, "", "%s wird nicht versetzt", pupilName)
				}
			}
		} else {
			// "Erw" and "RS" are only attainable at the end of year 12.
			s.XInfo["V13"] = "HS"
		}
	}
	return true
}
