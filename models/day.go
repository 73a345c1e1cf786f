package models

import "time"

// DayLayout is the format of a day bucket key.
const DayLayout = "2006-01-02"

// DayOf returns the calendar day t falls on in loc. Two instants conflict
// exactly when DayOf returns the same key for both.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// DayBounds returns the first and last instant of day in loc.
func DayBounds(day string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DayLayout, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end, nil
}
