package ui

import (
	"strings"
	"time"
)

const displayDateLayout = "Jan 2, 2006"

// FormatDate renders t in local time, e.g. "Mar 4, 2025".
func FormatDate(t time.Time) string {
	return t.Local().Format(displayDateLayout)
}

// FormatDateRange renders "<start> - <end>".
func FormatDateRange(start, end time.Time) string {
	return FormatDate(start) + " - " + FormatDate(end)
}

// MaskSecret hides all but the last visible characters of secret. Secrets no
// longer than visible are masked entirely.
func MaskSecret(secret string, visible int) string {
	r := []rune(secret)
	if len(r) <= visible {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-visible) + string(r[len(r)-visible:])
}
