package scale

import (
	"fmt"
	"strings"
)

// Frac is an exact rational number used for grade averages. Working with
// numerator and denominator directly avoids IEEE rounding surprises on
// exact .5 boundaries, which matter for legally defined rounding rules.
type Frac struct {
	Num int64
	Den int64
}

// NewFrac returns num/den. A zero denominator is a programming error.
func NewFrac(num, den int64) Frac {
	if den == 0 {
		panic("scale: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	return Frac{Num: num, Den: den}
}

// Cmp compares f with num/den, returning -1, 0 or +1.
func (f Frac) Cmp(num, den int64) int {
	lhs := f.Num * den
	rhs := num * f.Den
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	}
	return 0
}

// AtMost reports whether f <= num/den.
func (f Frac) AtMost(num, den int64) bool {
	return f.Cmp(num, den) <= 0
}

// Round renders f rounded half-away-from-zero to the given number of
// decimal places, using a comma as decimal separator.
func (f Frac) Round(decimalPlaces int) string {
	pow := pow10(decimalPlaces)
	scaled := f.Num * pow * 2
	var v int64
	if scaled >= 0 {
		v = (scaled + f.Den) / (2 * f.Den)
	} else {
		v = (scaled - f.Den) / (2 * f.Den)
	}
	return formatScaled(v, decimalPlaces)
}

// Truncate renders f cut (not rounded) to the given number of decimal
// places. The governing regulations call for truncation of averages.
func (f Frac) Truncate(decimalPlaces int) string {
	pow := pow10(decimalPlaces)
	v := (f.Num * pow) / f.Den
	return formatScaled(v, decimalPlaces)
}

func formatScaled(v int64, decimalPlaces int) string {
	if decimalPlaces == 0 {
		return fmt.Sprintf("%d", v)
	}
	s := fmt.Sprintf("%0*d", decimalPlaces+1, v)
	cut := len(s) - decimalPlaces
	return s[:cut] + "," + s[cut:]
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}

// ZeroPad left-pads a non-negative integer rendering to the given width.
func ZeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
