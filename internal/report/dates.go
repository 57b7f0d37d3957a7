package report

import (
	"fmt"
	"time"
)

// NoDate stands in for a missing date in the P.* pupil fields.
const NoDate = "00.00.0000"

const isoLayout = "2006-01-02"

// printDate converts an ISO date to the configured print layout. An
// empty input prints empty; a malformed one is an error.
func printDate(iso, layout string) (string, error) {
	if iso == "" {
		return "", nil
	}
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return "", fmt.Errorf("Ungültiges Datum: '%s'", iso)
	}
	return t.Format(layout), nil
}

// dateConv is the forgiving variant used for the P.* vocabulary: a
// missing or malformed date degrades to the NoDate placeholder.
func dateConv(iso, layout string) string {
	if iso == "" {
		return NoDate
	}
	s, err := printDate(iso, layout)
	if err != nil {
		return NoDate
	}
	return s
}
