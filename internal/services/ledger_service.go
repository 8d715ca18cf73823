// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"spendify/internal/cache"
	"spendify/internal/core"
	"spendify/internal/storage"
)

// ErrSessionExpired is returned when a core.Session presented to a service
// call is past its expiry.
var ErrSessionExpired = errors.New("session expired")

// View is the aggregated result of a ledger query: the merged and sorted
// transaction list plus its summary totals.
type View struct {
	Transactions []core.Transaction `json:"transactions"`
	Summary      core.Summary       `json:"summary"`
}

// LedgerService orchestrates ledger reads: it resolves the date filter,
// queries persisted transactions and recurring rules, materializes recurring
// instances, merges, sorts and summarizes. Results are cached per
// owner|filter|sort key; a singleflight group keeps at most one recompute in
// flight per key. Mutations (see transaction_service.go and
// recurring_service.go) invalidate the owner's whole cache scope.
type LedgerService struct {
	storage *storage.SQLiteRepository
	cache   *cache.LRUCache[View]
	group   singleflight.Group

	// now is replaceable in tests; the materializer needs a reference date
	// for the unbounded filter.
	now func() time.Time
}

func NewLedgerService(repo *storage.SQLiteRepository, viewCache *cache.LRUCache[View]) *LedgerService {
	return &LedgerService{
		storage: repo,
		cache:   viewCache,
		now:     time.Now,
	}
}

// List returns the aggregated ledger for the session's owner under the given
// filter and sort option. Invalid sort options fall back to date_desc;
// malformed filters degrade to unbounded inside core.ResolveRange.
func (s *LedgerService) List(ctx context.Context, session core.Session, filter core.DateFilter, sortBy core.SortOption) (View, error) {
	if session.Expired(s.now()) {
		return View{}, ErrSessionExpired
	}
	if !sortBy.Valid() {
		sortBy = core.SortDateDesc
	}

	key := viewCacheKey(session.UserID, filter, sortBy)
	if view, ok := s.cache.Get(key); ok {
		slog.DebugContext(ctx, "Ledger cache hit", "cache_key", key)
		return view, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		view, err := s.compute(ctx, session.UserID, filter, sortBy)
		if err != nil {
			return View{}, err
		}
		s.cache.Set(key, view)
		return view, nil
	})
	if err != nil {
		return View{}, err
	}

	return result.(View), nil
}

func (s *LedgerService) compute(ctx context.Context, userID string, filter core.DateFilter, sortBy core.SortOption) (View, error) {
	start, end := core.ResolveRange(filter)

	persisted, err := s.storage.QueryTransactions(ctx, userID, start, end)
	if err != nil {
		return View{}, fmt.Errorf("query transactions: %w", err)
	}

	rules, err := s.storage.QueryRecurringRules(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("query recurring rules: %w", err)
	}

	materialized := core.MaterializeRecurring(rules, start, end, core.DateOf(s.now()))
	merged := core.AggregateAndSort(persisted, materialized, sortBy)

	slog.InfoContext(ctx, "Ledger aggregated",
		"user_id", userID,
		"filter_type", string(filter.Type),
		"sort_by", string(sortBy),
		"persisted", len(persisted),
		"materialized", len(materialized))

	return View{Transactions: merged, Summary: core.Summarize(merged)}, nil
}

// Invalidate drops every cached view belonging to the owner. Called after
// each successful mutation so the next read recomputes from fresh data.
func (s *LedgerService) Invalidate(ctx context.Context, userID string) {
	removed := s.cache.DeletePrefix(userID + "|")
	if removed > 0 {
		slog.DebugContext(ctx, "Ledger cache invalidated", "user_id", userID, "entries", removed)
	}
}

// viewCacheKey builds the declared invalidation key: owner, filter and sort.
// The owner prefix is what Invalidate matches on.
func viewCacheKey(userID string, filter core.DateFilter, sortBy core.SortOption) string {
	var b strings.Builder
	b.WriteString(userID)
	b.WriteByte('|')
	b.WriteString(string(filter.Type))
	fmt.Fprintf(&b, ":%d:%d:%s", filter.Year, filter.Month, filter.Preset)
	if filter.Start != nil {
		b.WriteByte(':')
		b.WriteString(filter.Start.String())
	}
	if filter.End != nil {
		b.WriteByte(':')
		b.WriteString(filter.End.String())
	}
	b.WriteByte('|')
	b.WriteString(string(sortBy))
	return b.String()
}
