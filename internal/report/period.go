package report

import "time"

// ZeroBaselineGrowth is the growth percentage reported when the previous
// period's value is zero or absent. A zero baseline is treated as maximal
// growth rather than undefined, so dashboards always get a number.
const ZeroBaselineGrowth = 100

// PreviousPeriod computes the comparison window for a date range: a
// window of identical duration immediately preceding start, with no gap.
// The previous window ends exactly one day before start, and its start is
// offset backward from that end by the same wall-clock duration as the
// input window.
func PreviousPeriod(start, end time.Time) (time.Time, time.Time) {
	dur := end.Sub(start)
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.Add(-dur)
	return prevStart, prevEnd
}

// Growth returns the period-over-period growth percentage. A zero
// previous value yields ZeroBaselineGrowth.
func Growth(curr, prev float64) float64 {
	if prev == 0 {
		return ZeroBaselineGrowth
	}
	return (curr - prev) / prev * 100
}
