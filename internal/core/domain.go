package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

type (
	TransactionType string

	// Transaction is a single ledger entry. It is either persisted in
	// storage or materialized on the fly from a RecurringRule; materialized
	// entries carry IsRecurring=true and a back-reference to their rule and
	// are never written to storage.
	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"user_id"`
		Type        TransactionType `json:"type"`
		Date        Date            `json:"date"`
		Content     string          `json:"content"`
		Amount      int64           `json:"amount"`
		Category    string          `json:"category"`
		Memo        string          `json:"memo,omitempty"`
		ReceiptURL  *string         `json:"receipt_url"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
		IsRecurring bool            `json:"is_recurring"`
		RecurringID string          `json:"recurring_id,omitempty"`
	}

	// RecurringRule describes a monthly recurring transaction. DayOfMonth is
	// nominal: months shorter than the nominal day clamp to their last day.
	RecurringRule struct {
		ID         string          `json:"id"`
		UserID     string          `json:"user_id"`
		Type       TransactionType `json:"type"`
		Content    string          `json:"content"`
		Amount     int64           `json:"amount"`
		Category   string          `json:"category"`
		DayOfMonth int             `json:"day_of_month"`
		Memo       string          `json:"memo,omitempty"`
		IsActive   bool            `json:"is_active"`
		CreatedAt  time.Time       `json:"created_at"`
		UpdatedAt  time.Time       `json:"updated_at"`
	}

	// Summary holds the income/expense/balance totals of a transaction set.
	Summary struct {
		Income  int64 `json:"income"`
		Expense int64 `json:"expense"`
		Balance int64 `json:"balance"`
	}
)

// Fixed category sets per transaction type; both end in a catch-all "other".
var (
	ExpenseCategories = []string{
		"food", "transport", "shopping", "culture", "medical", "education",
		"housing", "communication", "insurance", "subscription", "other",
	}
	IncomeCategories = []string{
		"salary", "allowance", "side_income", "interest", "dividend", "other",
	}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("amount must be a positive integer")
	ErrInvalidCategory = errors.New("category not in the allowed set")
	ErrInvalidDay      = errors.New("day of month must be between 1 and 31")
	ErrEmptyContent    = errors.New("empty content")
	ErrZeroDate        = errors.New("date cannot be zero")
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

// ValidCategory reports whether category belongs to the fixed list for the
// given transaction type.
func ValidCategory(t TransactionType, category string) bool {
	var set []string
	switch t {
	case Expense:
		set = ExpenseCategories
	case Income:
		set = IncomeCategories
	default:
		return false
	}
	for _, c := range set {
		if c == category {
			return true
		}
	}
	return false
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(tx.Content) == "" {
		return ErrEmptyContent
	}
	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidCategory(tx.Type, tx.Category) {
		return ErrInvalidCategory
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(r.Content) == "" {
		return ErrEmptyContent
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidCategory(r.Type, r.Category) {
		return ErrInvalidCategory
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDay
	}
	return nil
}
