package daily

import (
	"fmt"
	"strings"
	"time"
)

// Normalize truncates t to midnight of its calendar day in loc.
// A nil loc means time.Local.
func Normalize(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseDay parses a YYYY-MM-DD string as midnight in loc.
// "today" and "yesterday" are accepted relative to now.
func ParseDay(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "today":
		return Normalize(now, loc), nil
	case "yesterday":
		return Normalize(now, loc).AddDate(0, 0, -1), nil
	}
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// DaysBetween returns the number of calendar days from a to b.
// It counts calendar days rather than 24h periods, so DST shifts do not skew it.
// Days are counted from Unix seconds since time.Duration saturates past ~292 years.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int((ub.Unix() - ua.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// MonthBounds returns the first and last day of the month containing t.
func MonthBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = Normalize(t, loc)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return first, last
}

// ParseMonth parses a YYYY-MM string; empty means the month containing now.
func ParseMonth(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		first, _ := MonthBounds(now, loc)
		return first, nil
	}
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM)", s)
	}
	return t, nil
}
