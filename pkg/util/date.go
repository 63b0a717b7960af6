package util

import "time"

// DayLayout is the date format used by cost snapshots and registry metadata.
const DayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD date. Returns (t, true) if it parsed.
func ParseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDayDefault parses a date or returns the default if empty/invalid.
func ParseDayDefault(s string, def time.Time) time.Time {
	if t, ok := ParseDay(s); ok {
		return t
	}
	return def
}

// Yesterday returns the previous calendar day truncated to midnight UTC.
func Yesterday() time.Time {
	return time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
}

// MonthBounds returns the first day of the month and the first day of the
// following month.
func MonthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
