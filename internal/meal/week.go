package meal

import (
	"strings"
	"time"
)

// WeekStart returns the first day of the week containing day.
// firstDay is "sunday" or anything else for Monday.
func WeekStart(day time.Time, firstDay string) time.Time {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	first := time.Monday
	if strings.EqualFold(firstDay, "sunday") {
		first = time.Sunday
	}
	offset := (int(day.Weekday()) - int(first) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// Days returns every date from start to end inclusive, in YYYY-MM-DD form.
// Both bounds must already be canonical dates; start after end yields nil.
func Days(start, end string) []string {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return nil
	}
	var days []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}

// Weekday returns the English weekday name of a YYYY-MM-DD date.
func Weekday(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}
