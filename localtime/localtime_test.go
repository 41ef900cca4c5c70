package localtime

import (
	"testing"
	"time"
)

func TestFromUnixMilli(t *testing.T) {
	// 2023-11-14 23:30:00 UTC
	ts := FromUnixMilli(1700004600000)

	if v := Format(ts); v != "2023-11-15 07:30:00" {
		t.Errorf("Incorrect localised time\n   expected: %v\n   got:      %v\n", "2023-11-15 07:30:00", v)
	}
}

func TestFormatAndParseRoundTrip(t *testing.T) {
	ts := time.Date(2025, time.November, 9, 21, 5, 30, 0, Location)

	parsed, err := Parse(Format(ts))
	if err != nil {
		t.Fatalf("Unexpected error returned from Parse (%v)", err)
	}

	if !parsed.Equal(ts) {
		t.Errorf("Incorrect round-trip\n   expected: %v\n   got:      %v\n", ts, parsed)
	}
}

func TestParseWithInvalidString(t *testing.T) {
	if _, err := Parse("--- 第 3 週 ---"); err == nil {
		t.Errorf("Expected error parsing separator text, got %v", err)
	}
}

func TestMonthKey(t *testing.T) {
	ts := time.Date(2025, time.November, 9, 21, 5, 30, 0, Location)

	if v := MonthKey(ts); v != "2025-11" {
		t.Errorf("Incorrect month key\n   expected: %v\n   got:      %v\n", "2025-11", v)
	}
}

func TestWeekNumber(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected int
	}{
		// 2025: January 1 is a Wednesday, first Sunday is January 5
		{time.Date(2025, time.January, 1, 10, 0, 0, 0, Location), 1},
		{time.Date(2025, time.January, 4, 23, 59, 59, 0, Location), 1},
		{time.Date(2025, time.January, 5, 0, 0, 0, 0, Location), 2},
		{time.Date(2025, time.January, 11, 12, 0, 0, 0, Location), 2},
		{time.Date(2025, time.January, 12, 12, 0, 0, 0, Location), 3},
		{time.Date(2025, time.November, 9, 21, 5, 30, 0, Location), 46},

		// 2023: January 1 is itself a Sunday
		{time.Date(2023, time.January, 1, 0, 0, 0, 0, Location), 1},
		{time.Date(2023, time.January, 7, 23, 59, 59, 0, Location), 1},
		{time.Date(2023, time.January, 8, 0, 0, 0, 0, Location), 2},
		{time.Date(2023, time.December, 31, 12, 0, 0, 0, Location), 53},
	}

	for _, test := range tests {
		if week := WeekNumber(test.date); week != test.expected {
			t.Errorf("Incorrect week number for %v\n   expected: %v\n   got:      %v\n", test.date, test.expected, week)
		}
	}
}

func TestWeekNumberIsNonDecreasing(t *testing.T) {
	previous := 0
	date := time.Date(2025, time.January, 1, 12, 0, 0, 0, Location)

	for date.Year() == 2025 {
		week := WeekNumber(date)
		if week < previous {
			t.Fatalf("Week number decreased at %v: %v -> %v", date, previous, week)
		}

		previous = week
		date = date.AddDate(0, 0, 1)
	}

	if v := WeekNumber(time.Date(2026, time.January, 1, 12, 0, 0, 0, Location)); v != 1 {
		t.Errorf("Expected week number to reset to 1 on year change, got %v", v)
	}
}

func TestIsNewWeek(t *testing.T) {
	saturday := time.Date(2025, time.November, 8, 23, 30, 0, 0, Location)
	sunday := time.Date(2025, time.November, 9, 8, 15, 0, 0, Location)
	monday := time.Date(2025, time.November, 10, 8, 15, 0, 0, Location)
	nextSunday := time.Date(2025, time.November, 16, 8, 15, 0, 0, Location)

	tests := []struct {
		current  time.Time
		previous time.Time
		expected bool
	}{
		{sunday, saturday, true},
		{monday, saturday, false},
		{monday, sunday, false},
		{saturday, saturday, false},
		{nextSunday, sunday, false}, // consecutive Sundays are pairwise invisible
		{saturday, sunday, false},   // out of order
	}

	for _, test := range tests {
		if v := IsNewWeek(test.current, test.previous); v != test.expected {
			t.Errorf("Incorrect IsNewWeek(%v, %v)\n   expected: %v\n   got:      %v\n", test.current, test.previous, test.expected, v)
		}
	}
}
