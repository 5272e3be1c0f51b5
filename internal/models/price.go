package models

import (
	"strconv"
	"strings"
	"unicode"
)

// ParsePrice extracts a numeric amount from a provider's display price,
// tolerating currency symbols, thousands separators and trailing text
// ("₹38,999", "$24.99", "1 299,00 kr"). Returns nil when no usable number
// is present.
func ParsePrice(text string) *float64 {
	var b strings.Builder
	seenDigit := false
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
			seenDigit = true
		case r == '.' && seenDigit:
			b.WriteRune(r)
		case r == ',' || unicode.IsSpace(r):
			// thousands separators
		default:
			if seenDigit {
				// stop at the first non-numeric rune after the amount
				// so "2 for $10" style text doesn't concatenate
				v, err := strconv.ParseFloat(b.String(), 64)
				if err != nil {
					return nil
				}
				return &v
			}
		}
	}
	if !seenDigit {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(b.String(), "."), 64)
	if err != nil {
		return nil
	}
	return &v
}
