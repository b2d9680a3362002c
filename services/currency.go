package services

import (
	"regexp"
	"strconv"
	"strings"
)

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// ParseCurrency converts a raw spreadsheet cell into a numeric value.
// It accepts Brazilian currency notation ("R$ 1.234,56"), plain numbers
// and blanks. Malformed input yields 0.0; a single bad cell must never
// abort a multi-thousand-row load, so this function does not fail.
func ParseCurrency(raw string) float64 {
	v, _ := parseCurrencyChecked(raw)
	return v
}

// parseCurrencyChecked reports whether the input was actually parseable.
// Blank cells are (0, true); non-blank garbage is (0, false) so callers
// can keep a malformed-value counter.
func parseCurrencyChecked(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, true
	}

	s = strings.ReplaceAll(s, "R$", "")
	s = strings.Join(strings.Fields(s), "")

	// Comma is the decimal marker; any dots before it are thousands
	// separators.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	s = nonNumeric.ReplaceAllString(s, "")

	if s == "" || s == "." {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
