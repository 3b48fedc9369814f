// Package storage is the SQLite persistence backend. Accounts and
// transactions live in their own tables; a synced flag on each transaction
// drives the export worker.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tracker/internal/core"
	"tracker/internal/store"

	_ "modernc.org/sqlite"
)

// ErrTransactionNotFound is returned when a requested transaction does not
// exist (e.g. its account was deleted before the worker caught up).
var ErrTransactionNotFound = errors.New("transaction not found")

type SQLiteRepository struct {
	db *sql.DB
}

// Interface conformance.
var (
	_ store.Store             = (*SQLiteRepository)(nil)
	_ store.TransactionGetter = (*SQLiteRepository)(nil)
	_ store.PendingLister     = (*SQLiteRepository)(nil)
	_ store.SyncMarker        = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements store.Loader: accounts in display order, histories newest
// first, selected account from the flagged row.
func (r *SQLiteRepository) Load(ctx context.Context) (core.Snapshot, error) {
	snap := core.Snapshot{Transactions: make(map[string][]core.Transaction)}

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, selected FROM accounts ORDER BY position, rowid`)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var acc core.Account
		var selected int
		if err := rows.Scan(&acc.ID, &acc.Name, &selected); err != nil {
			return core.Snapshot{}, fmt.Errorf("scan account: %w", err)
		}
		snap.Accounts = append(snap.Accounts, acc)
		if selected != 0 {
			snap.Selected = acc.ID
		}
	}
	if err := rows.Err(); err != nil {
		return core.Snapshot{}, fmt.Errorf("iterate accounts: %w", err)
	}

	txRows, err := r.db.QueryContext(ctx, `
		SELECT account_id, id, deposit_cents, spent_cents, saved_cents, wants_cents,
		       balance_cents, recorded_at, note
		FROM transactions ORDER BY account_id, id DESC`)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		var accountID string
		var tx core.Transaction
		if err := txRows.Scan(&accountID, &tx.ID, &tx.Deposit.Cents, &tx.Spent.Cents,
			&tx.Saved.Cents, &tx.Wants.Cents, &tx.Balance.Cents, &tx.Timestamp, &tx.Note); err != nil {
			return core.Snapshot{}, fmt.Errorf("scan transaction: %w", err)
		}
		snap.Transactions[accountID] = append(snap.Transactions[accountID], tx)
	}
	if err := txRows.Err(); err != nil {
		return core.Snapshot{}, fmt.Errorf("iterate transactions: %w", err)
	}

	return snap, nil
}

// AddAccount implements store.Mutator. The new account becomes selected.
func (r *SQLiteRepository) AddAccount(ctx context.Context, acc core.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, name, position, selected)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM accounts), 1)`,
		acc.ID, acc.Name); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET selected = 0 WHERE id != ?`, acc.ID); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return tx.Commit()
}

// RenameAccount implements store.Mutator.
func (r *SQLiteRepository) RenameAccount(ctx context.Context, id, name string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE accounts SET name = ? WHERE id = ?`, name, id); err != nil {
		return fmt.Errorf("rename account: %w", err)
	}
	return nil
}

// DeleteAccount implements store.Mutator. The account's transactions go
// with it; if it was selected, the first remaining account takes over.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var wasSelected int
	if err := tx.QueryRowContext(ctx, `SELECT selected FROM accounts WHERE id = ?`, id).Scan(&wasSelected); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("read account: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE account_id = ?`, id); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if wasSelected != 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE accounts SET selected = 1
			WHERE id = (SELECT id FROM accounts ORDER BY position, rowid LIMIT 1)`); err != nil {
			return fmt.Errorf("reselect account: %w", err)
		}
	}
	return tx.Commit()
}

// AppendTransaction implements store.Mutator.
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, accountID string, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, deposit_cents, spent_cents, saved_cents,
		                          wants_cents, balance_cents, recorded_at, note, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		tx.ID, accountID, tx.Deposit.Cents, tx.Spent.Cents, tx.Saved.Cents,
		tx.Wants.Cents, tx.Balance.Cents, tx.Timestamp, tx.Note)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"tx_id", tx.ID,
		"account_id", accountID,
		"balance_cents", tx.Balance.Cents)

	return nil
}

// SetSelected implements store.Mutator.
func (r *SQLiteRepository) SetSelected(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET selected = 0`); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET selected = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("set selection: %w", err)
	}
	return tx.Commit()
}

// GetTransaction implements store.TransactionGetter.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, accountID string, txID int64) (store.PendingTransaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT t.account_id, COALESCE(a.name, t.account_id), t.id, t.deposit_cents,
		       t.spent_cents, t.saved_cents, t.wants_cents, t.balance_cents,
		       t.recorded_at, t.note
		FROM transactions t LEFT JOIN accounts a ON a.id = t.account_id
		WHERE t.account_id = ? AND t.id = ?`, accountID, txID)
	p, err := scanPending(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.PendingTransaction{}, ErrTransactionNotFound
		}
		return store.PendingTransaction{}, fmt.Errorf("get transaction %d/%s: %w", txID, accountID, err)
	}
	return p, nil
}

// ListPending implements store.PendingLister, oldest first.
func (r *SQLiteRepository) ListPending(ctx context.Context, limit int) ([]store.PendingTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.account_id, COALESCE(a.name, t.account_id), t.id, t.deposit_cents,
		       t.spent_cents, t.saved_cents, t.wants_cents, t.balance_cents,
		       t.recorded_at, t.note
		FROM transactions t LEFT JOIN accounts a ON a.id = t.account_id
		WHERE t.synced = 0 ORDER BY t.id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var out []store.PendingTransaction
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending: %w", err)
	}
	return out, nil
}

// MarkSynced implements store.SyncMarker.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, accountID string, txID int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET synced = 1 WHERE account_id = ? AND id = ?`, accountID, txID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPending(row rowScanner) (store.PendingTransaction, error) {
	var p store.PendingTransaction
	err := row.Scan(&p.AccountID, &p.AccountName, &p.Tx.ID, &p.Tx.Deposit.Cents,
		&p.Tx.Spent.Cents, &p.Tx.Saved.Cents, &p.Tx.Wants.Cents, &p.Tx.Balance.Cents,
		&p.Tx.Timestamp, &p.Tx.Note)
	return p, err
}
