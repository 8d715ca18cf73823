package core

import "sort"

// AggregateAndSort merges persisted transactions with materialized recurring
// ones into a single ordered ledger. Persisted entries are tagged as
// non-recurring; materialized entries arrive already tagged. The sort is
// stable, so entries with equal keys keep the concatenation order
// (persisted before materialized).
func AggregateAndSort(persisted, materialized []Transaction, sortBy SortOption) []Transaction {
	merged := make([]Transaction, 0, len(persisted)+len(materialized))
	for _, tx := range persisted {
		tx.IsRecurring = false
		tx.RecurringID = ""
		merged = append(merged, tx)
	}
	merged = append(merged, materialized...)

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		switch sortBy {
		case SortDateDesc:
			if !a.Date.Equal(b.Date.Time) {
				return a.Date.After(b.Date)
			}
			return a.CreatedAt.After(b.CreatedAt)
		case SortDateAsc:
			if !a.Date.Equal(b.Date.Time) {
				return a.Date.Before(b.Date)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		case SortAmountDesc:
			return a.Amount > b.Amount
		case SortAmountAsc:
			return a.Amount < b.Amount
		default:
			return false
		}
	})

	return merged
}
