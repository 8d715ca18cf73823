// Package sheets defines the outbound port for the spreadsheet export
// pipeline.
package sheets

import (
	"context"

	"spendify/internal/core"
)

// RowKey identifies a ledger row to remove. TransactionID is authoritative;
// the snapshot fields locate rows written before IDs were recorded.
type RowKey struct {
	TransactionID string
	Date          string
	Content       string
	Amount        int64
}

// Ledger is the outbound port for the export spreadsheet.
type Ledger interface {
	// Upsert writes the transaction's row, replacing an existing row with
	// the same transaction ID. Returns a reference to the written row.
	Upsert(ctx context.Context, tx core.Transaction) (rowRef string, err error)

	// Remove deletes the row identified by key. Removing a row that is not
	// present is not an error.
	Remove(ctx context.Context, key RowKey) error
}
