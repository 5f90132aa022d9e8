package statement

import (
	"errors"
	"time"
)

var (
	// ErrInvalidPeriod rejects unknown period keywords.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidRange rejects custom ranges with a missing or inverted bound.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrRangeTooWide rejects custom ranges over the 90-day cap.
	ErrRangeTooWide = errors.New("custom range may not exceed 90 days")
)

const maxCustomRangeDays = 90

// resolvePeriod turns a period keyword into an inclusive [from, to] window.
// Weeks start on Monday. For "custom", start and end must be set and the
// span is capped at 90 days.
func resolvePeriod(period string, start, end time.Time, now time.Time) (time.Time, time.Time, error) {
	today := startOfDay(now.UTC())

	switch period {
	case "today":
		return today, endOfDay(today), nil
	case "yesterday":
		y := today.AddDate(0, 0, -1)
		return y, endOfDay(y), nil
	case "this_week":
		monday := today.AddDate(0, 0, -weekdayIndex(today))
		return monday, endOfDay(monday.AddDate(0, 0, 6)), nil
	case "last_week":
		monday := today.AddDate(0, 0, -weekdayIndex(today)-7)
		return monday, endOfDay(monday.AddDate(0, 0, 6)), nil
	case "this_month":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, endOfDay(first.AddDate(0, 1, -1)), nil
	case "last_month":
		firstOfCurrent := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		first := firstOfCurrent.AddDate(0, -1, 0)
		return first, endOfDay(firstOfCurrent.AddDate(0, 0, -1)), nil
	case "this_year":
		first := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return first, endOfDay(time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)), nil
	case "custom":
		if start.IsZero() || end.IsZero() || end.Before(start) {
			return time.Time{}, time.Time{}, ErrInvalidRange
		}
		from := startOfDay(start.UTC())
		lastDay := startOfDay(end.UTC())
		if lastDay.Sub(from) > maxCustomRangeDays*24*time.Hour {
			return time.Time{}, time.Time{}, ErrRangeTooWide
		}
		return from, endOfDay(lastDay), nil
	default:
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// weekdayIndex maps Monday to 0 through Sunday to 6.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
