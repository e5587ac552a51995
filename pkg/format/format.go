// Package format renders savings fractions and currency amounts for display.
package format

import (
	"math"
	"strconv"

	"github.com/iwvelando/business-case/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	if s, ok := nonFinite(amount); ok {
		return s
	}
	if amount < 0 {
		return printer.Sprintf("-$%.2f", math.Abs(amount))
	}
	return printer.Sprintf("$%.2f", amount)
}

// Percent formats a fraction as a whole-number percentage (0.234 -> "23%"),
// matching the chart axis format.
func Percent(fraction float64) string {
	return PercentWithPrecision(fraction, 0)
}

// PercentWithPrecision formats a fraction as a percentage with the given
// number of decimals.
func PercentWithPrecision(fraction float64, decimals int) string {
	if s, ok := nonFinite(fraction); ok {
		return s
	}
	return strconv.FormatFloat(mathutil.ToPercent(fraction), 'f', decimals, 64) + "%"
}

func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "+Inf", true
	case math.IsInf(v, -1):
		return "-Inf", true
	}
	return "", false
}
