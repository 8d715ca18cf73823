package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spendify/internal/core"
	"spendify/internal/storage"
)

// RecurringInput carries the user-editable fields of a recurring rule.
type RecurringInput struct {
	Type       core.TransactionType `json:"type"`
	Content    string               `json:"content"`
	Amount     int64                `json:"amount"`
	Category   string               `json:"category"`
	DayOfMonth int                  `json:"day_of_month"`
	Memo       string               `json:"memo"`
}

// RecurringService manages recurring rules. Rules are templates only;
// materialization into ledger rows happens at read time in LedgerService, so
// every mutation here just invalidates the owner's cached views.
type RecurringService struct {
	storage *storage.SQLiteRepository
	ledger  *LedgerService
	now     func() time.Time
}

func NewRecurringService(repo *storage.SQLiteRepository, ledger *LedgerService) *RecurringService {
	return &RecurringService{
		storage: repo,
		ledger:  ledger,
		now:     time.Now,
	}
}

func (s *RecurringService) Create(ctx context.Context, session core.Session, input RecurringInput) (core.RecurringRule, error) {
	if session.Expired(s.now()) {
		return core.RecurringRule{}, ErrSessionExpired
	}

	now := s.now().UTC()
	rule := core.RecurringRule{
		ID:         uuid.NewString(),
		UserID:     session.UserID,
		Type:       input.Type,
		Content:    input.Content,
		Amount:     input.Amount,
		Category:   input.Category,
		DayOfMonth: input.DayOfMonth,
		Memo:       input.Memo,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := rule.Validate(); err != nil {
		return core.RecurringRule{}, err
	}

	if err := s.storage.CreateRecurringRule(ctx, rule); err != nil {
		return core.RecurringRule{}, fmt.Errorf("create recurring rule: %w", err)
	}

	s.ledger.Invalidate(ctx, session.UserID)
	return rule, nil
}

func (s *RecurringService) Update(ctx context.Context, session core.Session, id string, input RecurringInput) (core.RecurringRule, error) {
	if session.Expired(s.now()) {
		return core.RecurringRule{}, ErrSessionExpired
	}

	existing, err := s.storage.GetRecurringRule(ctx, session.UserID, id)
	if err != nil {
		return core.RecurringRule{}, err
	}

	existing.Type = input.Type
	existing.Content = input.Content
	existing.Amount = input.Amount
	existing.Category = input.Category
	existing.DayOfMonth = input.DayOfMonth
	existing.Memo = input.Memo
	existing.UpdatedAt = s.now().UTC()

	if err := existing.Validate(); err != nil {
		return core.RecurringRule{}, err
	}

	if err := s.storage.UpdateRecurringRule(ctx, existing); err != nil {
		return core.RecurringRule{}, fmt.Errorf("update recurring rule: %w", err)
	}

	s.ledger.Invalidate(ctx, session.UserID)
	return existing, nil
}

// SetActive toggles a rule without touching its other fields. Inactive rules
// stay listable but stop materializing.
func (s *RecurringService) SetActive(ctx context.Context, session core.Session, id string, active bool) (core.RecurringRule, error) {
	if session.Expired(s.now()) {
		return core.RecurringRule{}, ErrSessionExpired
	}

	if err := s.storage.SetRecurringActive(ctx, session.UserID, id, active, s.now().UTC()); err != nil {
		return core.RecurringRule{}, err
	}

	s.ledger.Invalidate(ctx, session.UserID)
	return s.storage.GetRecurringRule(ctx, session.UserID, id)
}

func (s *RecurringService) Delete(ctx context.Context, session core.Session, id string) error {
	if session.Expired(s.now()) {
		return ErrSessionExpired
	}

	if err := s.storage.DeleteRecurringRule(ctx, session.UserID, id); err != nil {
		return err
	}

	s.ledger.Invalidate(ctx, session.UserID)
	return nil
}

func (s *RecurringService) List(ctx context.Context, session core.Session) ([]core.RecurringRule, error) {
	if session.Expired(s.now()) {
		return nil, ErrSessionExpired
	}
	return s.storage.QueryRecurringRules(ctx, session.UserID)
}
