package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"spendify/internal/amqp"
	"spendify/internal/core"
	"spendify/internal/storage"
)

// TransactionInput carries the user-editable fields of a transaction.
type TransactionInput struct {
	Type       core.TransactionType `json:"type"`
	Date       core.Date            `json:"date"`
	Content    string               `json:"content"`
	Amount     int64                `json:"amount"`
	Category   string               `json:"category"`
	Memo       string               `json:"memo"`
	ReceiptURL *string              `json:"receipt_url"`
}

// TransactionService handles transaction mutations. Each successful mutation
// invalidates the owner's cached ledger views and queues a best-effort
// spreadsheet export; export failures are logged, never surfaced.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	ledger     *LedgerService
	amqpClient *amqp.Client
	now        func() time.Time
}

func NewTransactionService(repo *storage.SQLiteRepository, ledger *LedgerService, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    repo,
		ledger:     ledger,
		amqpClient: amqpClient,
		now:        time.Now,
	}
}

func (s *TransactionService) Create(ctx context.Context, session core.Session, input TransactionInput) (core.Transaction, error) {
	if session.Expired(s.now()) {
		return core.Transaction{}, ErrSessionExpired
	}

	now := s.now().UTC()
	tx := core.Transaction{
		ID:         uuid.NewString(),
		UserID:     session.UserID,
		Type:       input.Type,
		Date:       input.Date,
		Content:    input.Content,
		Amount:     input.Amount,
		Category:   input.Category,
		Memo:       input.Memo,
		ReceiptURL: input.ReceiptURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.storage.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.ledger.Invalidate(ctx, session.UserID)
	s.queueExport(ctx, amqp.NewUpsertMessage(tx.ID))

	return tx, nil
}

func (s *TransactionService) Update(ctx context.Context, session core.Session, id string, input TransactionInput) (core.Transaction, error) {
	if session.Expired(s.now()) {
		return core.Transaction{}, ErrSessionExpired
	}

	existing, err := s.storage.GetTransaction(ctx, session.UserID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	existing.Type = input.Type
	existing.Date = input.Date
	existing.Content = input.Content
	existing.Amount = input.Amount
	existing.Category = input.Category
	existing.Memo = input.Memo
	existing.ReceiptURL = input.ReceiptURL
	existing.UpdatedAt = s.now().UTC()

	if err := existing.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.storage.UpdateTransaction(ctx, existing); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.ledger.Invalidate(ctx, session.UserID)
	s.queueExport(ctx, amqp.NewUpsertMessage(existing.ID))

	return existing, nil
}

func (s *TransactionService) Delete(ctx context.Context, session core.Session, id string) error {
	if session.Expired(s.now()) {
		return ErrSessionExpired
	}

	// Snapshot the row before deleting; the export worker needs its fields
	// to locate the spreadsheet row.
	existing, err := s.storage.GetTransaction(ctx, session.UserID, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteTransaction(ctx, session.UserID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.ledger.Invalidate(ctx, session.UserID)
	s.queueExport(ctx, amqp.NewDeleteMessage(existing.ID, existing.Date.String(), existing.Content, existing.Amount))

	return nil
}

// Get returns a single persisted transaction owned by the session's user.
func (s *TransactionService) Get(ctx context.Context, session core.Session, id string) (core.Transaction, error) {
	if session.Expired(s.now()) {
		return core.Transaction{}, ErrSessionExpired
	}
	return s.storage.GetTransaction(ctx, session.UserID, id)
}

func (s *TransactionService) queueExport(ctx context.Context, msg *amqp.ExportMessage) {
	if msg.Kind == amqp.ExportUpsert {
		if err := s.storage.RecordExportPending(ctx, msg.TransactionID, s.now().UTC()); err != nil {
			slog.ErrorContext(ctx, "Failed to record pending export",
				"transaction_id", msg.TransactionID, "error", err)
		}
	}

	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishExport(ctx, msg); err != nil {
		// The periodic backlog sweep will pick the row up later.
		slog.ErrorContext(ctx, "Failed to publish export message",
			"transaction_id", msg.TransactionID,
			"kind", string(msg.Kind),
			"error", err)
	}
}
