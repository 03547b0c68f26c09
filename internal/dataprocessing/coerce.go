package dataprocessing

import (
	"strconv"
	"strings"
)

// toFloat coerces a cell to a float. Extraction is best-effort: a blank or
// non-numeric cell yields nil, never an error.
func toFloat(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// toInt coerces a cell to an integer, accepting float formatting the way the
// instrument writes whole numbers ("12.0").
func toInt(s string) *int64 {
	f := toFloat(s)
	if f == nil {
		return nil
	}
	v := int64(*f)
	return &v
}

// toString trims surrounding whitespace; a blank cell is the empty string.
func toString(s string) string {
	return strings.TrimSpace(s)
}

// isBlank reports whether a cell holds no content after trimming.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
