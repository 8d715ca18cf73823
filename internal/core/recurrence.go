package core

import "fmt"

// MaterializedID builds the deterministic identifier of a transaction
// generated from a recurring rule on a given date. Repeated materialization
// of the same rule and date always yields the same identifier, so list keys
// stay stable across refetches.
func MaterializedID(ruleID string, date Date) string {
	return fmt.Sprintf("recurring-%s-%s", ruleID, date)
}

// MaterializeRecurring expands active recurring rules into concrete
// transactions inside the inclusive [start, end] window.
//
// When the window is unbounded (either bound nil) each active rule yields
// exactly one instance in today's month, so an unbounded view never generates
// unboundedly many occurrences. Otherwise every month intersecting the window
// yields one instance per rule, with the nominal day clamped to the month's
// real length, and instances falling outside the window at its edges are
// dropped.
//
// The result is never persisted; callers recompute it on every query.
func MaterializeRecurring(rules []RecurringRule, start, end *Date, today Date) []Transaction {
	generated := make([]Transaction, 0)

	if start == nil || end == nil {
		for _, rule := range rules {
			if !rule.IsActive {
				continue
			}
			day := ClampDay(today.Year(), today.Month(), rule.DayOfMonth)
			generated = append(generated, materialize(rule, NewDate(today.Year(), today.Month(), day)))
		}
		return generated
	}

	for month := start.MonthStart(); !month.After(*end); month = month.NextMonth() {
		for _, rule := range rules {
			if !rule.IsActive {
				continue
			}
			day := ClampDay(month.Year(), month.Month(), rule.DayOfMonth)
			candidate := NewDate(month.Year(), month.Month(), day)
			if candidate.Before(*start) || candidate.After(*end) {
				continue
			}
			generated = append(generated, materialize(rule, candidate))
		}
	}

	return generated
}

func materialize(rule RecurringRule, date Date) Transaction {
	return Transaction{
		ID:          MaterializedID(rule.ID, date),
		UserID:      rule.UserID,
		Type:        rule.Type,
		Date:        date,
		Content:     rule.Content,
		Amount:      rule.Amount,
		Category:    rule.Category,
		Memo:        rule.Memo,
		ReceiptURL:  nil,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
		IsRecurring: true,
		RecurringID: rule.ID,
	}
}
