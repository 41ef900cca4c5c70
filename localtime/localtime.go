package localtime

import (
	"time"
)

// All logged times are normalised to Taiwan time (UTC+8, no daylight saving).
var Location = time.FixedZone("Asia/Taipei", 8*60*60)

// Layout is the fixed timestamp format used in the ledger's time column.
const Layout = "2006-01-02 15:04:05"

// FromUnixMilli converts a LINE event timestamp (UTC milliseconds since epoch)
// to Taiwan time.
func FromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).In(Location)
}

// Now returns the current Taiwan time.
func Now() time.Time {
	return time.Now().In(Location)
}

// Format renders a timestamp as 'YYYY-MM-DD HH:MM:SS'.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse is the inverse of Format, interpreting the string as Taiwan time.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, Location)
}

// MonthKey returns the worksheet title for a timestamp, e.g. "2025-11".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// WeekNumber returns the 1-based week of the year, with weeks starting on
// Sunday and counted from the first Sunday of the calendar year. Dates before
// the first Sunday are week 1. If January 1 is itself a Sunday there are no
// such dates, so January 1 starts week 1 and the count increments on each
// following Sunday.
func WeekNumber(t time.Time) int {
	yearStart := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	offset := (7 - int(yearStart.Weekday())) % 7
	firstSunday := yearStart.AddDate(0, 0, offset)

	if t.Before(firstSunday) {
		return 1
	}

	weeks := int(t.Sub(firstSunday)/(24*time.Hour)) / 7
	if offset == 0 {
		return weeks + 1
	}

	return weeks + 2
}

// IsNewWeek reports whether the Saturday-to-Sunday boundary was crossed
// between two consecutive ledger entries. This is a pairwise test on the two
// weekdays only, not an interval check - entries more than a week apart are
// deliberately not detected unless the newer one lands on a Sunday.
func IsNewWeek(current, previous time.Time) bool {
	return previous.Weekday() != time.Sunday && current.Weekday() == time.Sunday
}
