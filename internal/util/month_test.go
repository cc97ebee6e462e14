package util

import (
	"testing"
	"time"
)

func TestParseDate_ReferenceZone(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d.Location().String() != ReferenceZone {
		t.Errorf("Expected location %s, got %s", ReferenceZone, d.Location())
	}
	if d.Year() != 2024 || d.Month() != time.January || d.Day() != 5 || d.Hour() != 0 {
		t.Errorf("Unexpected parsed date %v", d)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "05/01/2024", "2024-13-01", "not a date"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) expected error", s)
		}
	}
}

func TestStartAndEndOfDay(t *testing.T) {
	// 02:30 UTC on Jan 6 is still Jan 5 in Sao Paulo (UTC-3)
	instant := time.Date(2024, 1, 6, 2, 30, 0, 0, time.UTC)

	start := StartOfDay(instant)
	end := EndOfDay(instant)

	if start.Day() != 5 || start.Hour() != 0 {
		t.Errorf("StartOfDay = %v, want Jan 5 00:00 local", start)
	}
	if end.Day() != 5 || end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("EndOfDay = %v, want Jan 5 23:59:59 local", end)
	}
	if !end.After(start) {
		t.Error("EndOfDay should be after StartOfDay")
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		year    int
		month   time.Month
		lastDay int
	}{
		{2024, time.January, 31},
		{2024, time.February, 29}, // leap year
		{2025, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		first, last := MonthRange(tt.year, tt.month)
		if first.Day() != 1 || first.Month() != tt.month {
			t.Errorf("MonthRange(%d, %s) first = %v", tt.year, tt.month, first)
		}
		if last.Day() != tt.lastDay || last.Month() != tt.month {
			t.Errorf("MonthRange(%d, %s) last = %v, want day %d", tt.year, tt.month, last, tt.lastDay)
		}
	}
}

func TestCalculateActualDate(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		targetDay int
		wantDay   int
	}{
		{"normal day", 2026, time.January, 15, 15},
		{"31st in January", 2026, time.January, 31, 31},
		{"31st in February non-leap", 2026, time.February, 31, 28},
		{"31st in February leap year", 2024, time.February, 31, 29},
		{"31st in April", 2026, time.April, 31, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateActualDate(tt.year, tt.month, tt.targetDay)
			if got.Day() != tt.wantDay {
				t.Errorf("CalculateActualDate(%d, %s, %d) = day %d, want %d",
					tt.year, tt.month, tt.targetDay, got.Day(), tt.wantDay)
			}
		})
	}
}

func TestNextMonthSameDay(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mid month", "2024-03-10", "2024-04-10"},
		{"end of january clamps", "2024-01-31", "2024-02-29"},
		{"december rolls year", "2024-12-15", "2025-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseDate(tt.in)
			if err != nil {
				t.Fatalf("ParseDate: %v", err)
			}
			got := NextMonthSameDay(in).Format(DateLayout)
			if got != tt.want {
				t.Errorf("NextMonthSameDay(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestCalendarDay_KeepsWallClockDate(t *testing.T) {
	utcMidnight := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	got := CalendarDay(utcMidnight)
	if got.Format(DateLayout) != "2024-01-05" {
		t.Errorf("CalendarDay = %s, want 2024-01-05", got.Format(DateLayout))
	}
	if got.Location() != ReferenceLocation {
		t.Errorf("Expected reference location, got %s", got.Location())
	}
}
