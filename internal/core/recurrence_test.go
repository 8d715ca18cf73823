package core

import (
	"reflect"
	"testing"
	"time"
)

func testRule(id string, dayOfMonth int) RecurringRule {
	return RecurringRule{
		ID:         id,
		UserID:     "user-1",
		Type:       Expense,
		Content:    "rent",
		Amount:     50000,
		Category:   "housing",
		DayOfMonth: dayOfMonth,
		IsActive:   true,
		CreatedAt:  time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC),
	}
}

func materializedDates(ts []Transaction) []string {
	dates := make([]string, len(ts))
	for i, tx := range ts {
		dates[i] = tx.Date.String()
	}
	return dates
}

func TestMaterializeRecurring_ClampsToMonthLength(t *testing.T) {
	tests := []struct {
		name      string
		dayOfMonth int
		start, end Date
		wantDates  []string
	}{
		{
			name:       "day 31 in leap february",
			dayOfMonth: 31,
			start:      NewDate(2024, 2, 1),
			end:        NewDate(2024, 2, 29),
			wantDates:  []string{"2024-02-29"},
		},
		{
			name:       "day 31 in non-leap february",
			dayOfMonth: 31,
			start:      NewDate(2023, 2, 1),
			end:        NewDate(2023, 2, 28),
			wantDates:  []string{"2023-02-28"},
		},
		{
			name:       "day 31 in 30-day month",
			dayOfMonth: 31,
			start:      NewDate(2024, 4, 1),
			end:        NewDate(2024, 4, 30),
			wantDates:  []string{"2024-04-30"},
		},
		{
			name:       "day 31 across varying month lengths",
			dayOfMonth: 31,
			start:      NewDate(2024, 1, 1),
			end:        NewDate(2024, 4, 30),
			wantDates:  []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"},
		},
		{
			name:       "nominal day that fits every month",
			dayOfMonth: 15,
			start:      NewDate(2024, 1, 1),
			end:        NewDate(2024, 3, 31),
			wantDates:  []string{"2024-01-15", "2024-02-15", "2024-03-15"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaterializeRecurring([]RecurringRule{testRule("r1", tt.dayOfMonth)}, &tt.start, &tt.end, NewDate(2024, 6, 15))
			if gotDates := materializedDates(got); !reflect.DeepEqual(gotDates, tt.wantDates) {
				t.Errorf("materialized dates = %v, want %v", gotDates, tt.wantDates)
			}
		})
	}
}

func TestMaterializeRecurring_RangeEdges(t *testing.T) {
	// Day 1 occurrences: Jan 1 falls before the window start and must be
	// excluded; Feb 1 and Mar 1 fall inside.
	start := NewDate(2024, 1, 15)
	end := NewDate(2024, 3, 10)

	got := MaterializeRecurring([]RecurringRule{testRule("r1", 1)}, &start, &end, NewDate(2024, 6, 15))
	want := []string{"2024-02-01", "2024-03-01"}
	if gotDates := materializedDates(got); !reflect.DeepEqual(gotDates, want) {
		t.Errorf("materialized dates = %v, want %v", gotDates, want)
	}
}

func TestMaterializeRecurring_UnboundedUsesCurrentMonthOnly(t *testing.T) {
	today := NewDate(2024, 6, 15)

	got := MaterializeRecurring([]RecurringRule{testRule("r1", 31)}, nil, nil, today)
	if len(got) != 1 {
		t.Fatalf("materialized %d transactions, want 1", len(got))
	}
	if got[0].Date.String() != "2024-06-30" {
		t.Errorf("date = %s, want 2024-06-30", got[0].Date)
	}
}

func TestMaterializeRecurring_SkipsInactiveRules(t *testing.T) {
	inactive := testRule("r2", 10)
	inactive.IsActive = false
	start := NewDate(2024, 1, 1)
	end := NewDate(2024, 3, 31)

	got := MaterializeRecurring([]RecurringRule{testRule("r1", 10), inactive}, &start, &end, NewDate(2024, 6, 15))
	for _, tx := range got {
		if tx.RecurringID == "r2" {
			t.Errorf("inactive rule produced transaction on %s", tx.Date)
		}
	}
	if len(got) != 3 {
		t.Errorf("materialized %d transactions, want 3", len(got))
	}
}

func TestMaterializeRecurring_EmptyInputs(t *testing.T) {
	start := NewDate(2024, 1, 1)
	end := NewDate(2024, 12, 31)

	if got := MaterializeRecurring(nil, &start, &end, NewDate(2024, 6, 15)); len(got) != 0 {
		t.Errorf("nil rules materialized %d transactions, want 0", len(got))
	}

	// Zero-length range still includes the single day when an occurrence
	// lands on it.
	day := NewDate(2024, 3, 15)
	got := MaterializeRecurring([]RecurringRule{testRule("r1", 15)}, &day, &day, NewDate(2024, 6, 15))
	if len(got) != 1 || got[0].Date.String() != "2024-03-15" {
		t.Errorf("single-day range = %v, want one transaction on 2024-03-15", materializedDates(got))
	}

	// And excludes occurrences that miss it.
	got = MaterializeRecurring([]RecurringRule{testRule("r1", 16)}, &day, &day, NewDate(2024, 6, 15))
	if len(got) != 0 {
		t.Errorf("single-day range materialized %d transactions, want 0", len(got))
	}
}

func TestMaterializeRecurring_Idempotent(t *testing.T) {
	rules := []RecurringRule{testRule("r1", 31), testRule("r2", 5)}
	start := NewDate(2024, 1, 1)
	end := NewDate(2024, 6, 30)
	today := NewDate(2024, 6, 15)

	first := MaterializeRecurring(rules, &start, &end, today)
	second := MaterializeRecurring(rules, &start, &end, today)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated materialization produced different results")
	}
}

func TestMaterializeRecurring_PopulatesProvenance(t *testing.T) {
	rule := testRule("r1", 20)
	rule.Memo = "landlord transfer"
	start := NewDate(2024, 5, 1)
	end := NewDate(2024, 5, 31)

	got := MaterializeRecurring([]RecurringRule{rule}, &start, &end, NewDate(2024, 6, 15))
	if len(got) != 1 {
		t.Fatalf("materialized %d transactions, want 1", len(got))
	}

	tx := got[0]
	if tx.ID != "recurring-r1-2024-05-20" {
		t.Errorf("ID = %q, want %q", tx.ID, "recurring-r1-2024-05-20")
	}
	if !tx.IsRecurring {
		t.Error("IsRecurring = false, want true")
	}
	if tx.RecurringID != "r1" {
		t.Errorf("RecurringID = %q, want %q", tx.RecurringID, "r1")
	}
	if tx.ReceiptURL != nil {
		t.Error("materialized transaction carries a receipt URL")
	}
	if tx.UserID != rule.UserID || tx.Content != rule.Content || tx.Amount != rule.Amount ||
		tx.Category != rule.Category || tx.Memo != rule.Memo {
		t.Error("materialized transaction does not inherit rule fields")
	}
	if !tx.CreatedAt.Equal(rule.CreatedAt) {
		t.Errorf("CreatedAt = %v, want rule creation time %v", tx.CreatedAt, rule.CreatedAt)
	}
}
