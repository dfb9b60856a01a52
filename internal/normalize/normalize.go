// Package normalize converts the raw values found in advertising exports
// into canonical numeric and date-key forms. The exports use Vietnamese
// number formatting (dot thousands separator, comma decimal separator),
// and values arrive as strings, numbers, or not at all.
package normalize

import (
	"strconv"
	"strings"
)

// DefaultOnUnparsable is substituted for missing or unparsable numeric
// input. Ingestion favors best-effort insertion over rejection, so a bad
// number becomes a zero measurement rather than a failed row.
const DefaultOnUnparsable = 0

// Number parses a locale-formatted number string such as "5.676,62" into
// 5676.62. Dots are thousands separators and are removed; the decimal
// comma becomes a decimal point. Empty or unparsable input yields
// DefaultOnUnparsable. It never returns an error.
func Number(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultOnUnparsable
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return DefaultOnUnparsable
	}
	return f
}

// DateKey converts an ISO date string into its YYYYMMDD integer key:
// "2025-10-14" becomes 20251014. Empty input returns nil. No calendar
// validation is performed beyond the numeric parse, so a malformed date
// like "2025-13-45" still yields a key from its digits; input that does
// not parse as an integer at all returns nil.
func DateKey(iso string) *int64 {
	s := strings.TrimSpace(iso)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "-", "")
	key, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &key
}

// Round converts a measurement that is logically a count (results,
// impressions) from its parsed float form to the nearest integer.
func Round(f float64) int64 {
	if f < 0 {
		return int64(f - 0.5)
	}
	return int64(f + 0.5)
}
