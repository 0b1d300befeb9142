// Package calc holds the pure calculators the agents are built on.
// Nothing in here performs I/O or reads configuration files.
package calc

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatAmount renders an amount rounded to cents without trailing zeros (50, 50.5, 12.25).
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

// FormatMoney renders a whole-unit amount with thousands separators and a currency symbol.
func FormatMoney(symbol string, v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	neg := d.IsNegative()
	digits := d.Abs().StringFixed(0)

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	out := symbol + b.String()
	if neg {
		return "-" + out
	}
	return out
}
