package core

import (
	"encoding/json"
	"testing"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		want  int
	}{
		{name: "january has 31 days", year: 2024, month: 1, want: 31},
		{name: "april has 30 days", year: 2024, month: 4, want: 30},
		{name: "february in leap year", year: 2024, month: 2, want: 29},
		{name: "february in non-leap year", year: 2023, month: 2, want: 28},
		{name: "february in century non-leap year", year: 1900, month: 2, want: 28},
		{name: "february in 400-divisible leap year", year: 2000, month: 2, want: 29},
		{name: "december has 31 days", year: 2024, month: 12, want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysInMonth(tt.year, tt.month)
			if got != tt.want {
				t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestClampDay(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		day   int
		want  int
	}{
		{name: "day within month length", year: 2024, month: 6, day: 15, want: 15},
		{name: "day 31 in 30-day month", year: 2024, month: 6, day: 31, want: 30},
		{name: "day 31 in leap february", year: 2024, month: 2, day: 31, want: 29},
		{name: "day 31 in non-leap february", year: 2023, month: 2, day: 31, want: 28},
		{name: "day 30 in leap february", year: 2024, month: 2, day: 30, want: 29},
		{name: "last day exactly", year: 2024, month: 4, day: 30, want: 30},
		{name: "first day", year: 2024, month: 4, day: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampDay(tt.year, tt.month, tt.day)
			if got != tt.want {
				t.Errorf("ClampDay(%d, %d, %d) = %d, want %d", tt.year, tt.month, tt.day, got, tt.want)
			}
		})
	}
}

func TestDate_String(t *testing.T) {
	d := NewDate(2024, 2, 9)
	if got := d.String(); got != "2024-02-09" {
		t.Errorf("String() = %q, want %q", got, "2024-02-09")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-15")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Year() != 2024 || d.Month() != 6 || d.Day() != 15 {
		t.Errorf("ParseDate() = %v, want 2024-06-15", d)
	}

	if _, err := ParseDate("15/06/2024"); err == nil {
		t.Error("ParseDate() expected error for non-ISO input")
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 12, 31)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"2024-12-31"` {
		t.Errorf("Marshal() = %s, want %q", data, `"2024-12-31"`)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}

func TestDate_NextMonth(t *testing.T) {
	tests := []struct {
		name string
		in   Date
		want Date
	}{
		{name: "mid year", in: NewDate(2024, 5, 1), want: NewDate(2024, 6, 1)},
		{name: "december rolls into next year", in: NewDate(2024, 12, 1), want: NewDate(2025, 1, 1)},
		{name: "january in leap year", in: NewDate(2024, 1, 1), want: NewDate(2024, 2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.NextMonth()
			if !got.Equal(tt.want.Time) {
				t.Errorf("NextMonth() = %v, want %v", got, tt.want)
			}
		})
	}
}
