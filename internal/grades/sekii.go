package grades

import (
	"errors"

	"github.com/wzreports/zeugnis/internal/diag"
)

// fs2Subjects are the second-foreign-language subjects, excluded for the
// Fachabitur variant. The first foreign language is assumed to be English.
var fs2Subjects = map[string]bool{"Fr": true, "Ru": true, "La": true}

// AbiChoices is a pupil's ordered list of Abitur-relevant subjects:
// eight subjects, or seven for the Fachabitur variant (second foreign
// language excluded).
type AbiChoices []string

// ParseAbiChoices validates a chosen subject list. With fachabi true the
// second-foreign-language subjects are removed and seven must remain.
func ParseAbiChoices(sids []string, fachabi bool) (AbiChoices, error) {
	if len(sids) == 0 {
		return nil, errors.New("Keine Abifächer")
	}
	if len(sids) != 8 {
		return nil, errors.New("Abifächeranzahl ≠ 8")
	}
	if !fachabi {
		return AbiChoices(sids), nil
	}
	kept := make([]string, 0, len(sids))
	for _, s := range sids {
		if !fs2Subjects[s] {
			kept = append(kept, s)
		}
	}
	if len(kept) != 7 {
		return nil, errors.New("Fachabifächeranzahl ≠ 7")
	}
	return AbiChoices(kept), nil
}

// IsDeMaFS reports whether the subject (suffix stripped) is Deutsch,
// Mathe or a Fremdsprache.
func IsDeMaFS(sid string) bool {
	b := baseSID(sid)
	return b == "De" || b == "Ma" || b == "En" || fs2Subjects[b]
}

// SekII performs the general pass test at the end of class 12 on the
// Qualifikationsphase scale: not more than two subjects under 5 points
// or one subject with 0 points, with compensation. With fachabi true the
// second foreign language is left out of the considerations.
func (s *Set) SekII(pupilName string, chosen []string, fachabi bool, rep *diag.Report) bool {
	abis, err := ParseAbiChoices(chosen, fachabi)
	if err != nil {
		rep.Error(pupilName, "", "ABI_SUBJECTS: %s (%s)", err, pupilName)
		return false
	}

	type sg struct {
		sid string
		g   int
	}
	var fives, ok []sg
	zerop := ""
	for _, sid := range abis {
		g, has := s.Numeric(sid)
		if !has {
			rep.Error(pupilName, sid, "%s: Note fehlt im Abiturfach %s", pupilName, sid)
			s.display[sid] = ""
			return false
		}
		switch {
		case g == 0:
			if zerop != "" {
				return false
			}
			zerop = sid
		case g < 5:
			fives = append(fives, sg{sid, g})
		default:
			ok = append(ok, sg{sid, g})
		}
	}

	if zerop != "" {
		if len(fives) > 0 {
			return false
		}
		for _, x := range ok {
			if x.g >= 10 && (IsDeMaFS(x.sid) || !IsDeMaFS(zerop)) {
				return true
			}
		}
		c := 0
		for _, x := range ok {
			if x.g >= 8 && (IsDeMaFS(x.sid) || !IsDeMaFS(zerop)) {
				if c > 0 {
					return true
				}
				c = 1
			}
		}
		return false
	}

	if len(fives) < 2 {
		return true
	}
	if len(fives) > 2 {
		return false
	}
	// The DeMaFS deficit is harder to compensate, handle it first.
	first, second := fives[0], fives[1]
	if !IsDeMaFS(first.sid) {
		first, second = second, first
	}
	used := ""
	for _, x := range ok {
		if first.g+x.g >= 10 && (IsDeMaFS(x.sid) || !IsDeMaFS(first.sid)) {
			used = x.sid
			break
		}
	}
	if used == "" {
		return false
	}
	for _, x := range ok {
		if x.sid == used {
			continue
		}
		if second.g+x.g >= 10 && (IsDeMaFS(x.sid) || !IsDeMaFS(first.sid)) {
			return true
		}
	}
	return false
}

// V13 determines, for the gymnasial 12th class, the qualification for
// advancement to the 13th: "Erw", "RS" or "HS".
func (s *Set) V13(pupilName string, chosen []string, rep *diag.Report) string {
	if v, done := s.XInfo["V13"]; done {
		return v
	}
	v := "HS"
	if s.Class.AtLeast("13") {
		v = "Erw"
	} else if s.SekII(pupilName, chosen, true, rep) {
		if s.SekII(pupilName, chosen, false, rep) {
			v = "Erw"
		} else {
			v = "RS"
		}
	}
	s.XInfo["V13"] = v
	return v
}
