package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendify/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or belongs to a
// different owner.
var ErrNotFound = errors.New("not found")

// User is a registered account. Password hashes never leave this package's
// callers in API responses.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PendingExport is a transaction row awaiting export to the spreadsheet.
type PendingExport struct {
	TransactionID string
	Attempts      int
	UpdatedAt     time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Ping checks the database connection, for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID)
	return nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// --- transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, date, content, amount, category, memo, receipt_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, string(tx.Type), tx.Date.String(), tx.Content, tx.Amount,
		tx.Category, tx.Memo, tx.ReceiptURL, tx.CreatedAt, tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", tx.ID,
		"user_id", tx.UserID,
		"transaction_type", string(tx.Type),
		"amount", tx.Amount,
		"category", tx.Category)
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET type = ?, date = ?, content = ?, amount = ?, category = ?, memo = ?, receipt_url = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		string(tx.Type), tx.Date.String(), tx.Content, tx.Amount, tx.Category,
		tx.Memo, tx.ReceiptURL, tx.UpdatedAt, tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, date, content, amount, category, memo, receipt_url, created_at, updated_at
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID)

	tx, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// GetTransactionByID looks a transaction up without an owner check. Only the
// export worker uses this; API paths go through GetTransaction.
func (r *SQLiteRepository) GetTransactionByID(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, date, content, amount, category, memo, receipt_url, created_at, updated_at
		FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// QueryTransactions returns the owner's persisted transactions, optionally
// restricted to the inclusive [start, end] date window. Nil bounds mean an
// unbounded query.
func (r *SQLiteRepository) QueryTransactions(ctx context.Context, userID string, start, end *core.Date) ([]core.Transaction, error) {
	query := `
		SELECT id, user_id, type, date, content, amount, category, memo, receipt_url, created_at, updated_at
		FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if start != nil && end != nil {
		query += ` AND date >= ? AND date <= ?`
		args = append(args, start.String(), end.String())
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]core.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx      core.Transaction
		typ     string
		dateStr string
		receipt sql.NullString
	)
	err := row.Scan(&tx.ID, &tx.UserID, &typ, &dateStr, &tx.Content, &tx.Amount,
		&tx.Category, &tx.Memo, &receipt, &tx.CreatedAt, &tx.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Type = core.TransactionType(typ)
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	tx.Date = date
	if receipt.Valid {
		tx.ReceiptURL = &receipt.String
	}
	return tx, nil
}

// --- recurring rules ---

func (r *SQLiteRepository) CreateRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_rules (id, user_id, type, content, amount, category, day_of_month, memo, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.UserID, string(rule.Type), rule.Content, rule.Amount,
		rule.Category, rule.DayOfMonth, rule.Memo, rule.IsActive, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create recurring rule: %w", err)
	}

	slog.InfoContext(ctx, "Recurring rule saved",
		"recurring_id", rule.ID,
		"user_id", rule.UserID,
		"day_of_month", rule.DayOfMonth,
		"amount", rule.Amount)
	return nil
}

func (r *SQLiteRepository) UpdateRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_rules
		SET type = ?, content = ?, amount = ?, category = ?, day_of_month = ?, memo = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		string(rule.Type), rule.Content, rule.Amount, rule.Category,
		rule.DayOfMonth, rule.Memo, rule.UpdatedAt, rule.ID, rule.UserID)
	if err != nil {
		return fmt.Errorf("update recurring rule: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) SetRecurringActive(ctx context.Context, userID, id string, active bool, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_rules SET is_active = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`, active, now, id, userID)
	if err != nil {
		return fmt.Errorf("set recurring active: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteRecurringRule(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recurring_rules WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recurring rule: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetRecurringRule(ctx context.Context, userID, id string) (core.RecurringRule, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, content, amount, category, day_of_month, memo, is_active, created_at, updated_at
		FROM recurring_rules WHERE id = ? AND user_id = ?`, id, userID)
	return scanRecurringRule(row)
}

// QueryRecurringRules returns all of the owner's rules, active or not.
// Filtering on the active flag is the materializer's concern.
func (r *SQLiteRepository) QueryRecurringRules(ctx context.Context, userID string) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, content, amount, category, day_of_month, memo, is_active, created_at, updated_at
		FROM recurring_rules WHERE user_id = ?
		ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query recurring rules: %w", err)
	}
	defer rows.Close()

	rules := make([]core.RecurringRule, 0)
	for rows.Next() {
		rule, err := scanRecurringRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring rules: %w", err)
	}

	return rules, nil
}

func scanRecurringRule(row rowScanner) (core.RecurringRule, error) {
	var (
		rule core.RecurringRule
		typ  string
	)
	err := row.Scan(&rule.ID, &rule.UserID, &typ, &rule.Content, &rule.Amount,
		&rule.Category, &rule.DayOfMonth, &rule.Memo, &rule.IsActive,
		&rule.CreatedAt, &rule.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringRule{}, ErrNotFound
	}
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("scan recurring rule: %w", err)
	}

	rule.Type = core.TransactionType(typ)
	return rule, nil
}

// --- export bookkeeping ---

// RecordExportPending marks a transaction as awaiting spreadsheet export.
// Upserting resets the synced flag so updates are re-exported.
func (r *SQLiteRepository) RecordExportPending(ctx context.Context, transactionID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO export_log (transaction_id, synced, attempts, last_error, updated_at)
		VALUES (?, 0, 0, '', ?)
		ON CONFLICT(transaction_id) DO UPDATE SET synced = 0, updated_at = excluded.updated_at`,
		transactionID, now)
	if err != nil {
		return fmt.Errorf("record export pending: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) PendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT transaction_id, attempts, updated_at
		FROM export_log WHERE synced = 0
		ORDER BY updated_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending exports: %w", err)
	}
	defer rows.Close()

	pending := make([]PendingExport, 0)
	for rows.Next() {
		var p PendingExport
		if err := rows.Scan(&p.TransactionID, &p.Attempts, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending exports: %w", err)
	}

	return pending, nil
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, transactionID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE export_log SET synced = 1, last_error = '', updated_at = ?
		WHERE transaction_id = ?`, now, transactionID)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked exported", "transaction_id", transactionID)
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, transactionID string, exportErr error, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE export_log SET attempts = attempts + 1, last_error = ?, updated_at = ?
		WHERE transaction_id = ?`, exportErr.Error(), now, transactionID)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
