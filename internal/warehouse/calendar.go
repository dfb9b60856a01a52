package warehouse

import "time"

// dateAttributes are the derived calendar fields stored on dim_date. All
// of them are pure functions of the calendar date.
type dateAttributes struct {
	FullDate   string
	Year       int
	Quarter    int
	Month      int
	MonthName  string
	WeekOfYear int
	DayOfMonth int
	DayOfWeek  int // 1=Monday .. 7=Sunday
	DayName    string
	IsWeekend  bool
}

// calendarAttributes computes the dim_date fields for an ISO date string.
// ok is false when the string is not a valid calendar date; the caller
// then writes the row with zero-valued attributes rather than rejecting
// it, keeping the permissive date-key behavior.
func calendarAttributes(iso string) (dateAttributes, bool) {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return dateAttributes{}, false
	}

	// Go's Weekday has Sunday=0; the warehouse convention is 1=Monday
	// through 7=Sunday.
	dow := int(t.Weekday())
	if dow == 0 {
		dow = 7
	}

	return dateAttributes{
		FullDate:   t.Format("2006-01-02"),
		Year:       t.Year(),
		Quarter:    (int(t.Month())-1)/3 + 1,
		Month:      int(t.Month()),
		MonthName:  t.Month().String(),
		WeekOfYear: (t.YearDay() + 6) / 7,
		DayOfMonth: t.Day(),
		DayOfWeek:  dow,
		DayName:    t.Weekday().String(),
		IsWeekend:  dow >= 6,
	}, true
}
