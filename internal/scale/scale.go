// Package scale defines the grading scales: which grade tokens are legal,
// how they sanitize, how they print on reports and how numeric values are
// extracted for averaging.
package scale

import (
	"strconv"
	"strings"
)

// Special grade tokens. These exact strings appear in persisted data and in
// template output and must be preserved verbatim.
const (
	Unchosen     = "/"  // subject not chosen / invalid
	NoGrade      = "*"  // no grade / average undefined
	NotTakenPart = "nt" // nicht teilgenommen
	TakenPart    = "t"  // teilgenommen
	NotAssessed  = "nb" // kann nicht beurteilt werden
)

// NoValue is returned by Sanitize for legal but non-numeric grades.
const NoValue = -1

// Dash fills grade fields that are present but carry no numeric value.
const Dash = "––––––"

// Kind selects a grading-scale variant.
type Kind int

const (
	// Standard is the Sek I scale: grades "1".."6" with optional "+"/"-".
	Standard Kind = iota
	// Qualiphase is the Qualifikationsphase scale: points "00".."15".
	Qualiphase
	// AbiturFinal is the Abitur final-exam scale. It shares the point
	// tokens of Qualiphase but is handled by its own manager.
	AbiturFinal
)

// gradeTexts maps standard-scale tokens (suffix stripped) to the wording
// required on Sek I reports.
var gradeTexts = map[string]string{
	"1":          "sehr gut",
	"2":          "gut",
	"3":          "befriedigend",
	"4":          "ausreichend",
	"5":          "mangelhaft",
	"6":          "ungenügend",
	NoGrade:      Dash,
	NotTakenPart: "nicht teilgenommen",
	TakenPart:    "teilgenommen",
	NotAssessed:  "kann nicht beurteilt werden",
	Unchosen:     "",
	"":           "?",
}

var validStandard = tokenSet(
	"1+", "1", "1-",
	"2+", "2", "2-",
	"3+", "3", "3-",
	"4+", "4", "4-",
	"5+", "5", "5-",
	"6",
	NoGrade, NotTakenPart, TakenPart, NotAssessed, Unchosen,
)

var validPoints = tokenSet(
	"15", "14", "13",
	"12", "11", "10",
	"09", "08", "07",
	"06", "05", "04",
	"03", "02", "01",
	"00",
	NoGrade, NotTakenPart, TakenPart, NotAssessed, Unchosen,
)

func tokenSet(tokens ...string) map[string]bool {
	m := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		m[t] = true
	}
	return m
}

// Scale is one grading-scale variant.
type Scale struct {
	kind  Kind
	valid map[string]bool
	zpad  int
}

// ByKind returns the scale definition for the given variant.
func ByKind(k Kind) Scale {
	switch k {
	case Standard:
		return Scale{kind: Standard, valid: validStandard, zpad: 1}
	default:
		return Scale{kind: k, valid: validPoints, zpad: 2}
	}
}

// Kind returns the scale variant.
func (s Scale) Kind() Kind { return s.kind }

// ZPad is the digit width for zero-padding numeric grades on this scale.
func (s Scale) ZPad() int { return s.zpad }

// Valid reports whether the token is a member of the scale's grade set.
func (s Scale) Valid(token string) bool { return s.valid[token] }

// Sanitize checks a raw grade token and returns its canonical display form
// together with its integer value. Non-numeric but legal tokens return
// NoValue. An illegal token returns ok == false with an empty display form;
// the caller records the bad grade and continues, so a single bad entry
// never aborts a whole run. The "+"/"-" suffixes of the standard scale are
// kept for display but ignored for the numeric value.
func (s Scale) Sanitize(token string) (display string, value int, ok bool) {
	if !s.valid[token] {
		return "", NoValue, false
	}
	if s.kind == Standard {
		suffix := ""
		g := token
		if strings.HasSuffix(g, "+") || strings.HasSuffix(g, "-") {
			suffix = g[len(g)-1:]
			g = g[:len(g)-1]
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			return token, NoValue, true
		}
		return strconv.Itoa(n) + suffix, n, true
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return token, NoValue, true
	}
	return ZeroPad(strconv.Itoa(n), s.zpad), n, true
}

// Print maps a sanitized grade token to the text printed on a report.
// For the standard scale this is the German grade wording; for the point
// scales the zero-padded number itself, a dash run for present-but-empty
// sentinels, or "?" for a truly missing grade.
func (s Scale) Print(token string) string {
	if s.kind == Standard {
		return gradeTexts[strings.TrimRight(token, "+-")]
	}
	if token == "" {
		return "?"
	}
	if token == Unchosen {
		return ""
	}
	if _, err := strconv.Atoi(token); err == nil {
		return token
	}
	return Dash
}

// FormatInt renders an integer grade in the scale's padded form.
func (s Scale) FormatInt(v int) string {
	return ZeroPad(strconv.Itoa(v), s.zpad)
}
