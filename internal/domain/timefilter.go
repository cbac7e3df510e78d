package domain

import "time"

// TimeFilter selects a date range relative to the current day.
type TimeFilter string

const (
	TimeFilterCurrentMonth TimeFilter = "current-month"
	TimeFilterLastMonth    TimeFilter = "last-month"
	TimeFilterThisYear     TimeFilter = "this-year"
	TimeFilterCustom       TimeFilter = "custom"
)

// DateRange bounds occurrence dates as a half-open interval [Start, End).
// A nil bound leaves that side unrestricted.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ResolveDateRange maps a time filter to the range it selects, relative to
// now. Listing and summarization both resolve through this function so the
// same filter always means the same window.
//
// Unrecognized filter values restrict nothing, as does "custom" without a
// start date. A custom end date is inclusive of the whole end day.
func ResolveDateRange(tf TimeFilter, start, end *time.Time, now time.Time) DateRange {
	switch tf {
	case TimeFilterCurrentMonth:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0)
		return DateRange{Start: &s, End: &e}
	case TimeFilterLastMonth:
		e := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		s := e.AddDate(0, -1, 0)
		return DateRange{Start: &s, End: &e}
	case TimeFilterThisYear:
		s := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(1, 0, 0)
		return DateRange{Start: &s, End: &e}
	case TimeFilterCustom:
		if start == nil {
			return DateRange{}
		}
		s := *start
		r := DateRange{Start: &s}
		if end != nil {
			e := end.AddDate(0, 0, 1)
			r.End = &e
		}
		return r
	}
	return DateRange{}
}
