// Package worker exports ledger transactions to the configured spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"spendify/internal/amqp"
	"spendify/internal/sheets"
	"spendify/internal/storage"
)

// ExportWorker consumes export messages and sweeps the export backlog. The
// message path is the fast path; the sweep recovers rows whose messages were
// lost or whose export failed.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	ledger    sheets.Ledger
	batchSize int
	now       func() time.Time
}

func NewExportWorker(repo *storage.SQLiteRepository, ledger sheets.Ledger, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   repo,
		ledger:    ledger,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// HandleExportMessage processes one AMQP export message. A returned error
// makes the consumer nack-and-requeue the delivery.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"transaction_id", msg.TransactionID,
		"kind", string(msg.Kind))

	switch msg.Kind {
	case amqp.ExportDelete:
		err := w.ledger.Remove(ctx, sheets.RowKey{
			TransactionID: msg.TransactionID,
			Date:          msg.Date,
			Content:       msg.Content,
			Amount:        msg.Amount,
		})
		if err != nil {
			return fmt.Errorf("remove ledger row: %w", err)
		}
		// Settle any pending upsert for the same row so the sweep does not
		// chase a transaction that no longer exists.
		if err := w.storage.MarkExported(ctx, msg.TransactionID, w.now().UTC()); err != nil {
			slog.ErrorContext(ctx, "Failed to settle export log after delete",
				"transaction_id", msg.TransactionID, "error", err)
		}
		return nil
	case amqp.ExportUpsert:
		return w.exportTransaction(ctx, msg.TransactionID)
	default:
		// Unknown kinds are dropped, requeueing cannot fix them.
		slog.ErrorContext(ctx, "Unknown export message kind",
			"transaction_id", msg.TransactionID, "kind", string(msg.Kind))
		return nil
	}
}

// ProcessPendingExports sweeps up to batchSize unsynced rows, exporting them
// concurrently.
func (w *ExportWorker) ProcessPendingExports(ctx context.Context) error {
	pending, err := w.storage.PendingExports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing export backlog", "count", len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range pending {
		g.Go(func() error {
			if err := w.exportTransaction(gctx, p.TransactionID); err != nil {
				slog.ErrorContext(gctx, "Backlog export failed",
					"transaction_id", p.TransactionID,
					"attempts", p.Attempts,
					"error", err)
			}
			// Failures are recorded per row; the sweep itself keeps going.
			return nil
		})
	}
	return g.Wait()
}

// RunSweep runs ProcessPendingExports on the given interval until the context
// is cancelled. One pass runs immediately on startup to recover downtime.
func (w *ExportWorker) RunSweep(ctx context.Context, interval time.Duration) error {
	if err := w.ProcessPendingExports(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup export sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPendingExports(ctx); err != nil {
				slog.ErrorContext(ctx, "Export sweep failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id string) error {
	tx, err := w.storage.GetTransactionByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted since the message was queued; the delete path owns the
		// sheet row. Settle the log entry.
		if err := w.storage.MarkExported(ctx, id, w.now().UTC()); err != nil {
			slog.ErrorContext(ctx, "Failed to settle export log for missing row",
				"transaction_id", id, "error", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.ledger.Upsert(ctx, tx)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, id, err, w.now().UTC()); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record export error",
				"transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("upsert ledger row: %w", err)
	}

	if err := w.storage.MarkExported(ctx, id, w.now().UTC()); err != nil {
		// The export itself succeeded; log and move on.
		slog.ErrorContext(ctx, "Failed to mark transaction exported",
			"transaction_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"transaction_id", id,
		"sheet_ref", ref,
		"amount", tx.Amount)
	return nil
}
