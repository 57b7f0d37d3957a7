// Package template manages grade-report templates: the report-type rules
// (which type is valid for which class/stream/term and which template file
// it selects), the term validity tables and the YAML template definitions.
package template

import (
	"fmt"

	"github.com/wzreports/zeugnis/internal/catalog"
)

// ConfigError is a report-type misconfiguration (invalid type for the
// class, inadmissible qualification entry). Fatal for the pupil or group
// it concerns.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// Report type tags.
const (
	Orientierung = "Orientierung"
	Zeugnis      = "Zeugnis"
	Abschluss    = "Abschluss"
	Abgang       = "Abgang"
	Zwischen     = "Zwischen"
)

// typeNames maps a report-type tag to the heading printed on the report.
var typeNames = map[string]string{
	Orientierung: "Orientierungsnoten",
	Zeugnis:      "Zeugnis",
	Abschluss:    "Abschlusszeugnis",
	Abgang:       "Abgangszeugnis",
	Zwischen:     "Zwischenzeugnis",
}

// Info carries the pupil/group facts the report-type rules consult.
type Info struct {
	Class     catalog.ClassLabel
	Level     string // stream: Gym, RS, HS
	Quali     string // stored qualification entry
	Term      string
	PupilName string
}

// Resolved is the outcome of report-type resolution: the display name,
// the selected template key and a possible qualification override (some
// rules downgrade or clear the QUALI entry).
type Resolved struct {
	Tag           string
	Name          string
	TemplateKey   string
	Quali         string
	QualiOverride bool
}

func qualiIn(q string, valid ...string) bool {
	for _, v := range valid {
		if q == v {
			return true
		}
	}
	return false
}

// Resolve applies the report-type rules for the given tag. The returned
// template key is looked up in the loaded template set.
func Resolve(rtype string, info Info) (*Resolved, error) {
	r := &Resolved{Tag: rtype, Name: typeNames[rtype]}
	switch rtype {
	case Orientierung:
		if info.Class.AtLeast("12") || (info.Class.AtLeast("11") && info.Term != "1") {
			return nil, &ConfigError{Message: fmt.Sprintf(
				"Ungültiger Zeugnistyp: '%s'", rtype)}
		}
		r.TemplateKey = "grades-Orientierung"

	case Zeugnis:
		r.TemplateKey = "grades-SekI"
		if info.Level == catalog.StreamGym {
			if info.Class.AtLeast("13") {
				if info.Term == "1" {
					return nil, &ConfigError{Message: fmt.Sprintf(
						"Ungültiger Zeugnistyp für %s: '%s'", info.PupilName, rtype)}
				}
				r.TemplateKey = "grades-SekII-13_1"
			} else if info.Class.AtLeast("12") {
				if !qualiIn(info.Quali, "HS", "RS", "Erw") {
					return nil, &ConfigError{Message: fmt.Sprintf(
						"Ungültiger Eintrag im Feld 'Qualifikation': '%s'", info.Quali)}
				}
				r.TemplateKey = "grades-SekII"
			}
		}

	case Abschluss:
		ok := false
		if info.Class == "11" || info.Class == "12" {
			if info.Level == catalog.StreamHS && info.Quali == "HS" {
				ok = true
			} else if info.Level == catalog.StreamRS &&
				(info.Quali == "RS" || (info.Quali == "Erw" && info.Class == "12")) {
				ok = true
			}
		}
		if !ok {
			return nil, &ConfigError{Message: fmt.Sprintf(
				"Ungültiger Zeugnistyp für %s: '%s'", info.PupilName, rtype)}
		}
		r.TemplateKey = "grades-SekI-Abschluss"

	case Abgang:
		r.TemplateKey = "grades-SekI-Abgang"
		if info.Level == catalog.StreamGym {
			switch {
			case info.Class.AtLeast("13"):
				r.TemplateKey = "grades-SekII-13-Abgang"
			case info.Class.AtLeast("12"):
				if !qualiIn(info.Quali, "HS", "RS", "Erw") {
					return nil, &ConfigError{Message: fmt.Sprintf(
						"Ungültiger Eintrag im Feld 'Qualifikation': '%s'", info.Quali)}
				}
				if info.Term != "2" {
					// Erw and RS can only be reached at the end of year 12.
					r.Quali = "HS"
					r.QualiOverride = true
				}
				r.TemplateKey = "grades-SekII-12-Abgang"
			case info.Class.AtLeast("11"):
				if !qualiIn(info.Quali, "/", "HS", "Erw") {
					return nil, &ConfigError{Message: fmt.Sprintf(
						"Ungültiger Eintrag im Feld 'Qualifikation': '%s'", info.Quali)}
				}
			}
		} else if info.Class.AtLeast("11") || (info.Class.AtLeast("10") && info.Term == "2") {
			if qualiIn(info.Quali, "HS", "RS", "Erw") {
				r.TemplateKey = "grades-SekI-AbgangHS"
				r.Quali = "HS"
				r.QualiOverride = true
			} else {
				r.Quali = ""
				r.QualiOverride = true
			}
		}

	case Zwischen:
		if info.Class.AtLeast("11") {
			return nil, &ConfigError{Message: fmt.Sprintf(
				"Ungültiger Zeugnistyp: '%s'", rtype)}
		}
		r.TemplateKey = "grades-SekI"

	default:
		return nil, &ConfigError{Message: fmt.Sprintf(
			"Ungültiger Zeugnistyp: '%s'", rtype)}
	}
	return r, nil
}

// NoComment fills the remarks field of a report without a comment.
const NoComment = "––––––––––"

// Finish is the per-type finishing hook on the assembled slot mapping:
// it applies the qualification override and the comment filler.
func (r *Resolved) Finish(gmap map[string]string) {
	if r.QualiOverride {
		gmap["QUALI"] = r.Quali
	}
	if gmap["COMMENT"] == "" {
		gmap["NOCOMMENT"] = NoComment
	} else {
		gmap["NOCOMMENT"] = ""
	}
}
