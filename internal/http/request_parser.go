package http

import (
	"net/url"
	"strconv"
	"time"

	"spendify/internal/core"
)

// nowFunc anchors preset ranges; replaceable in tests.
var nowFunc = time.Now

// parseDateFilter reads the ledger query parameters. Malformed or missing
// values never fail: filter resolution degrades to unbounded downstream, per
// the read path's tolerance for bad input.
func parseDateFilter(q url.Values) core.DateFilter {
	filter := core.DateFilter{Type: core.FilterType(q.Get("filter"))}
	if filter.Type == "" {
		filter.Type = core.FilterAll
	}

	if v := q.Get("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			filter.Year = year
		}
	}
	if v := q.Get("month"); v != "" {
		if month, err := strconv.Atoi(v); err == nil {
			filter.Month = month
		}
	}
	filter.Preset = core.PresetRange(q.Get("preset"))

	if v := q.Get("start"); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			filter.Start = &d
		}
	}
	if v := q.Get("end"); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			filter.End = &d
		}
	}

	// Presets are shorthand for a concrete range anchored at today.
	if filter.Type == core.FilterPreset && filter.Start == nil && filter.End == nil {
		if days, ok := presetDays(filter.Preset); ok {
			end := core.DateOf(nowFunc())
			start := core.DateOf(nowFunc().AddDate(0, 0, -days))
			filter.Start = &start
			filter.End = &end
		}
	}

	return filter
}

func presetDays(p core.PresetRange) (int, bool) {
	switch p {
	case core.Preset30Days:
		return 30, true
	case core.Preset90Days:
		return 90, true
	case core.Preset180Days:
		return 180, true
	}
	return 0, false
}

func parseSort(q url.Values) core.SortOption {
	sort := core.SortOption(q.Get("sort"))
	if !sort.Valid() {
		return core.SortDateDesc
	}
	return sort
}
