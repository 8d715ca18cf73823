package core

// Summarize reduces a transaction collection to its income, expense and
// balance totals. Materialized recurring entries count exactly like persisted
// ones. An empty input yields the zero summary.
func Summarize(transactions []Transaction) Summary {
	var s Summary
	for _, tx := range transactions {
		switch tx.Type {
		case Income:
			s.Income += tx.Amount
		case Expense:
			s.Expense += tx.Amount
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}
