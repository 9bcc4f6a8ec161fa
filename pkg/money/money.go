// Package money formats decimal amounts as Vietnamese đồng for user-facing
// messages. Amounts are stored and computed with shopspring/decimal; this
// package only handles presentation.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatVND renders an amount in the conventional Vietnamese notation:
// dot-separated thousands with a trailing đồng sign, e.g. "150.000₫".
// Fractional đồng do not exist, so the amount is rounded to a whole number.
func FormatVND(amount decimal.Decimal) string {
	whole := amount.Round(0)

	neg := whole.IsNegative()
	digits := whole.Abs().String()

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	// Group digits in threes from the right.
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	b.WriteRune('₫')
	return b.String()
}
