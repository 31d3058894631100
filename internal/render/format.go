// Package render formats scored governors and comparisons for terminals.
package render

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Thresholds for FormatShort.
const (
	billion  = 1_000_000_000
	million  = 1_000_000
	thousand = 1_000
)

// FormatShort abbreviates v: 1.23B, 4.56M, 7.8k, or the plain integer below
// a thousand. The sign is kept, so -2500000 is -2.50M.
func FormatShort(v float64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	switch {
	case v >= billion:
		return fmt.Sprintf("%s%.2fB", sign, v/billion)
	case v >= million:
		return fmt.Sprintf("%s%.2fM", sign, v/million)
	case v >= thousand:
		return fmt.Sprintf("%s%.1fk", sign, v/thousand)
	default:
		return fmt.Sprintf("%s%d", sign, int64(math.Round(v)))
	}
}

// FormatNumber writes v with thousands separators and at most two decimals.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}

// FormatInt writes n with thousands separators.
func FormatInt(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent writes v as a percentage with one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// formatMetric picks the display format for a comparison metric key.
func formatMetric(key string, v float64) string {
	switch key {
	case "completion", "mean_completion":
		return FormatPercent(v)
	case "start_power", "power_delta", "troop_power_delta", "target_dkp":
		return FormatShort(v)
	default:
		return FormatNumber(v)
	}
}
