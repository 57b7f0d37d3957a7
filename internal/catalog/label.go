package catalog

// ClassLabel is a school-class label such as "10", "12.G" or "13".
// All ordering on class labels is lexicographic string comparison; the
// label scheme is designed for it ("12" < "12.G" < "13") and the grading
// rules depend on exactly this ordering, so it must not be replaced by a
// numeric comparison.
type ClassLabel string

// AtLeast reports whether the label sorts at or above the given label.
func (c ClassLabel) AtLeast(other string) bool {
	return string(c) >= other
}

// Year returns the year part of the label ("12.G" -> "12"). Class labels
// always start with two digits.
func (c ClassLabel) Year() string {
	if len(c) < 2 {
		return string(c)
	}
	return string(c[:2])
}

// Streams a pupil can be graded under.
const (
	StreamGym = "Gym"
	StreamRS  = "RS"
	StreamHS  = "HS"
)

// AllStreams marks a catalog entry as applicable to every stream.
const AllStreams = "*"
