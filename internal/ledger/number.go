package ledger

import (
	"math"
	"regexp"
	"strconv"
)

// nonNumeric matches everything that cannot appear in a plain decimal
// number, so "250 kcal" and "12.5g" coerce cleanly.
var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseNumber leniently coerces free text to a number. It strips non-numeric
// characters before parsing and yields nil, never an error, when nothing
// parseable remains or the value is not finite.
func ParseNumber(v string) *float64 {
	cleaned := nonNumeric.ReplaceAllString(v, "")
	if cleaned == "" {
		return nil
	}
	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return nil
	}
	return &num
}
