package http

import (
	"net/url"
	"testing"
	"time"

	"spendify/internal/core"
)

func TestParseDateFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  core.DateFilter
	}{
		{
			name:  "month filter",
			query: "filter=month&year=2024&month=6",
			want:  core.DateFilter{Type: core.FilterMonth, Year: 2024, Month: 6},
		},
		{
			name:  "year filter",
			query: "filter=year&year=2024",
			want:  core.DateFilter{Type: core.FilterYear, Year: 2024},
		},
		{
			name:  "missing filter defaults to all",
			query: "",
			want:  core.DateFilter{Type: core.FilterAll},
		},
		{
			name:  "non-numeric year is ignored",
			query: "filter=month&year=banana&month=6",
			want:  core.DateFilter{Type: core.FilterMonth, Month: 6},
		},
		{
			name:  "unknown filter type passes through",
			query: "filter=fortnight",
			want:  core.DateFilter{Type: core.FilterType("fortnight")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery() error = %v", err)
			}
			got := parseDateFilter(q)
			if got.Type != tt.want.Type || got.Year != tt.want.Year || got.Month != tt.want.Month {
				t.Errorf("parseDateFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDateFilter_RangeBounds(t *testing.T) {
	q, _ := url.ParseQuery("filter=range&start=2024-01-15&end=2024-03-10")
	got := parseDateFilter(q)

	if got.Start == nil || got.Start.String() != "2024-01-15" {
		t.Errorf("Start = %v, want 2024-01-15", got.Start)
	}
	if got.End == nil || got.End.String() != "2024-03-10" {
		t.Errorf("End = %v, want 2024-03-10", got.End)
	}
}

func TestParseDateFilter_MalformedDatesDropped(t *testing.T) {
	q, _ := url.ParseQuery("filter=range&start=15-01-2024&end=2024-03-10")
	got := parseDateFilter(q)

	if got.Start != nil {
		t.Errorf("Start = %v, want nil for malformed date", got.Start)
	}
	if got.End == nil {
		t.Error("End = nil, want parsed date")
	}
}

func TestParseDateFilter_PresetAnchorsAtToday(t *testing.T) {
	restore := nowFunc
	nowFunc = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = restore }()

	q, _ := url.ParseQuery("filter=preset&preset=30days")
	got := parseDateFilter(q)

	if got.Start == nil || got.Start.String() != "2024-05-16" {
		t.Errorf("Start = %v, want 2024-05-16", got.Start)
	}
	if got.End == nil || got.End.String() != "2024-06-15" {
		t.Errorf("End = %v, want 2024-06-15", got.End)
	}
}

func TestParseDateFilter_UnknownPresetStaysUnbounded(t *testing.T) {
	q, _ := url.ParseQuery("filter=preset&preset=45days")
	got := parseDateFilter(q)

	if got.Start != nil || got.End != nil {
		t.Errorf("bounds = (%v, %v), want unbounded", got.Start, got.End)
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		query string
		want  core.SortOption
	}{
		{"sort=date_asc", core.SortDateAsc},
		{"sort=amount_desc", core.SortAmountDesc},
		{"sort=bogus", core.SortDateDesc},
		{"", core.SortDateDesc},
	}

	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		if got := parseSort(q); got != tt.want {
			t.Errorf("parseSort(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
