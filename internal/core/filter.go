package core

const (
	FilterMonth  FilterType = "month"
	FilterYear   FilterType = "year"
	FilterPreset FilterType = "preset"
	FilterRange  FilterType = "range"
	FilterAll    FilterType = "all"
)

const (
	Preset30Days  PresetRange = "30days"
	Preset90Days  PresetRange = "90days"
	Preset180Days PresetRange = "180days"
)

const (
	SortDateDesc   SortOption = "date_desc"
	SortDateAsc    SortOption = "date_asc"
	SortAmountDesc SortOption = "amount_desc"
	SortAmountAsc  SortOption = "amount_asc"
)

type (
	FilterType  string
	PresetRange string
	SortOption  string

	// DateFilter selects the date window of a ledger query. Which fields are
	// meaningful depends on Type: month uses Year/Month, year uses Year,
	// preset and range use Start/End, all uses nothing.
	DateFilter struct {
		Type   FilterType  `json:"type"`
		Year   int         `json:"year,omitempty"`
		Month  int         `json:"month,omitempty"`
		Preset PresetRange `json:"preset,omitempty"`
		Start  *Date       `json:"start_date,omitempty"`
		End    *Date       `json:"end_date,omitempty"`
	}
)

// Valid reports whether s is a known sort option.
func (s SortOption) Valid() bool {
	switch s {
	case SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc:
		return true
	}
	return false
}

// ResolveRange converts a date filter into a concrete inclusive start/end
// pair. Both results are nil for an unbounded query: the all filter, and any
// month or year filter with missing or out-of-range fields. Resolution never
// fails; malformed filters degrade to unbounded.
func ResolveRange(f DateFilter) (start, end *Date) {
	switch f.Type {
	case FilterMonth:
		if f.Year == 0 || f.Month < 1 || f.Month > 12 {
			return nil, nil
		}
		s := NewDate(f.Year, f.Month, 1)
		e := NewDate(f.Year, f.Month, DaysInMonth(f.Year, f.Month))
		return &s, &e
	case FilterYear:
		if f.Year == 0 {
			return nil, nil
		}
		s := NewDate(f.Year, 1, 1)
		e := NewDate(f.Year, 12, 31)
		return &s, &e
	case FilterPreset, FilterRange:
		return f.Start, f.End
	default:
		return nil, nil
	}
}
