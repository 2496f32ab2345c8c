package utils

import (
	"fmt"
	"math"
	"strings"
)

// Round2 rounds a currency amount to 2 decimal places.
// All ledger arithmetic rounds at every pricing and total point.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// USD formats a value as a dollar amount with comma grouping, e.g. $1,234.56
func USD(v float64) string {
	s := fmt.Sprintf("%.2f", math.Abs(v))
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
