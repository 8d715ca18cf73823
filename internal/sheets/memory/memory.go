// Package memory provides an in-memory ledger export target for tests and
// local runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendify/internal/core"
	ports "spendify/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ ports.Ledger = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Upsert(_ context.Context, tx core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.rows {
		if row.ID == tx.ID {
			s.rows[i] = tx
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.rows = append(s.rows, tx)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) Remove(_ context.Context, key ports.RowKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.rows {
		if row.ID == key.TransactionID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the stored rows in insertion order.
func (s *Store) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.rows...)
}
