// Package format provides pure display-string helpers for numeric and time
// values. All functions are deterministic with no external state.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Currency renders a dollar amount. Whole-dollar amounts get two decimals
// with grouped thousands; sub-cent amounts keep enough precision to be
// meaningful for per-call LLM costs.
func Currency(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs > 0 && abs < 0.01:
		return "$" + strconv.FormatFloat(v, 'f', 6, 64)
	case abs >= 1000:
		return "$" + groupThousands(fmt.Sprintf("%.2f", v))
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// Number abbreviates large counts: 1500 -> "1.5K", 2300000 -> "2.3M".
func Number(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return trimZero(v/1_000_000_000) + "B"
	case abs >= 1_000_000:
		return trimZero(v/1_000_000) + "M"
	case abs >= 1000:
		return trimZero(v/1000) + "K"
	default:
		return trimZero(v)
	}
}

// Latency renders milliseconds below one second and seconds above:
// 950 -> "950ms", 1500 -> "1.50s".
func Latency(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.2fs", ms/1000)
}

// Percentage renders a ratio already expressed in percent with one decimal.
func Percentage(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Count renders an integer with grouped thousands for table cells.
func Count(n int64) string {
	return groupThousands(strconv.FormatInt(n, 10))
}

// RelativeTime renders t relative to now: "just now", "5m ago", "3h ago",
// "2d ago", then an absolute date beyond a week.
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// trimZero drops a trailing ".0" so 2.0 renders as "2" but 1.5 stays "1.5".
func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

// groupThousands inserts commas into the integer part of a plain decimal
// string, preserving sign and fraction.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
