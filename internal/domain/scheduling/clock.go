package scheduling

import (
	"fmt"
	"time"
)

// SlotInterval is the booking grid granularity.
const SlotInterval = 30 * time.Minute

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// OnGrid reports whether an "HH:MM" time falls on the slot grid.
func OnGrid(s string) bool {
	m, err := ParseClock(s)
	if err != nil {
		return false
	}
	return m%int(SlotInterval.Minutes()) == 0
}

// ParseDate parses a "YYYY-MM-DD" calendar date. The result is midnight UTC;
// all date comparisons in this package are calendar-level, not instants.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// FormatDate renders a calendar date as "YYYY-MM-DD".
func FormatDate(d time.Time) string {
	return d.Format(dateLayout)
}

// beforeToday reports whether d falls on a calendar day before today.
func beforeToday(d time.Time, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}
