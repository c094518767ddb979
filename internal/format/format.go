// Package format renders KPI and insight values for display: currency with
// thousands separators, percentages and day counts to two decimals.
//
// Formatting is presentation only; the numeric values underneath remain the
// contract. All rendering goes through an English-locale x/text printer so
// grouping separators come from the locale tables instead of hand-rolled
// string slicing.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency renders a dollar amount with separators and no decimals,
// e.g. 1234567.8 -> "$1,234,568".
func Currency(v float64) string {
	return printer.Sprintf("$%d", int64(math.Round(v)))
}

// Count renders a whole quantity with separators, e.g. 1234567 -> "1,234,567".
func Count(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// Days renders a day count to two decimals, e.g. 7.5 -> "7.50 days".
func Days(v float64) string {
	return printer.Sprintf("%.2f days", v)
}

// Percent renders a percentage to two decimals, e.g. 2.261 -> "2.26%".
func Percent(v float64) string {
	return printer.Sprintf("%.2f%%", v)
}

// NA is the sentinel shown when a metric cannot be computed (empty view).
const NA = "N/A"

// ForColumn picks the renderer conventionally used for a numeric column.
// Money columns get Currency, lead times get Days, rates get Percent, and
// everything else is shown as a plain count.
func ForColumn(column string) func(float64) string {
	switch column {
	case "revenue_generated", "manufacturing_costs", "costs", "price", "shipping_costs":
		return Currency
	case "lead_time":
		return Days
	case "defect_rates", "profit_margin":
		return Percent
	default:
		return Count
	}
}
