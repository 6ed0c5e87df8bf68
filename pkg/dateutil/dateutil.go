// Package dateutil provides the calendar arithmetic behind rotation periods:
// two-month windows, the Mondays that anchor night weeks and the weekend
// dates that carry day shifts.
package dateutil

import "time"

// DateOnly truncates t to UTC midnight so dates compare and hash cleanly as
// map keys.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MustDate parses an ISO date (YYYY-MM-DD) and panics on failure. Intended
// for tests and literals, not user input.
func MustDate(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDate parses an ISO date (YYYY-MM-DD) into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// RotationPeriod returns the rotation window for a start date: the day
// before the same day-of-month two months later. A start on the 21st yields
// an end on the 20th two months out.
func RotationPeriod(start time.Time) (time.Time, time.Time) {
	start = DateOnly(start)
	end := start.AddDate(0, 2, 0).AddDate(0, 0, -1)
	return start, end
}

// WeekRange returns the Monday..Sunday span of a night week.
func WeekRange(weekStart time.Time) (time.Time, time.Time) {
	return weekStart, weekStart.AddDate(0, 0, 6)
}

// MondaysIn returns every Monday within [start, end], ascending.
func MondaysIn(start, end time.Time) []time.Time {
	var mondays []time.Time
	current := DateOnly(start)
	end = DateOnly(end)

	for current.Weekday() != time.Monday {
		current = current.AddDate(0, 0, 1)
		if current.After(end) {
			return mondays
		}
	}
	for !current.After(end) {
		mondays = append(mondays, current)
		current = current.AddDate(0, 0, 7)
	}
	return mondays
}

// WeekendsIn returns every Saturday and Sunday within [start, end], ascending.
func WeekendsIn(start, end time.Time) []time.Time {
	var weekends []time.Time
	current := DateOnly(start)
	end = DateOnly(end)

	for !current.After(end) {
		if IsWeekend(current) {
			weekends = append(weekends, current)
		}
		current = current.AddDate(0, 0, 1)
	}
	return weekends
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysBetween returns the whole-day difference b-a.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
