// Package services orchestrates the in-memory ledger with its persistence
// backend and the optional AMQP sync channel.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tracker/internal/amqp"
	"tracker/internal/core"
	"tracker/internal/store"
)

// LedgerService owns the ledger. The core structure is not safe for
// concurrent use; the service serializes access because HTTP handlers run
// concurrently. Every successful mutation is mirrored to the store, and
// recorded transactions are announced over AMQP when a client is
// configured. Persistence failures are reported but never roll back the
// in-memory state.
type LedgerService struct {
	mu         sync.Mutex
	ledger     *core.Ledger
	store      store.Store
	amqpClient *amqp.Client
}

// New loads the persisted ledger state from the store and returns a ready
// service. An empty store yields the default ledger, whose accounts are
// mirrored into the store so later restarts see them.
func New(ctx context.Context, st store.Store, amqpClient *amqp.Client) (*LedgerService, error) {
	snap, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	fresh := len(snap.Accounts) == 0 && len(snap.Transactions) == 0

	s := &LedgerService{
		ledger:     core.FromSnapshot(snap),
		store:      st,
		amqpClient: amqpClient,
	}

	if fresh {
		for _, acc := range s.ledger.Accounts() {
			s.persist(ctx, "seed account", st.AddAccount(ctx, acc))
		}
		s.persist(ctx, "seed selection", st.SetSelected(ctx, s.ledger.Selected()))
	}
	return s, nil
}

// NewWithLedger wires an existing ledger, mainly for tests.
func NewWithLedger(l *core.Ledger, st store.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{ledger: l, store: st, amqpClient: amqpClient}
}

// Accounts returns the accounts in display order.
func (s *LedgerService) Accounts() []core.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Accounts()
}

// Account returns one account by id.
func (s *LedgerService) Account(id string) (core.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Account(id)
}

// Selected returns the active account id.
func (s *LedgerService) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Selected()
}

// Select switches the active account.
func (s *LedgerService) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Select(id); err != nil {
		return err
	}
	s.persist(ctx, "select account", s.store.SetSelected(ctx, id))
	return nil
}

// AddAccount creates an account and selects it.
func (s *LedgerService) AddAccount(ctx context.Context, name string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.ledger.AddAccount(name)
	if err != nil {
		return core.Account{}, err
	}
	s.persist(ctx, "add account", s.store.AddAccount(ctx, acc))
	slog.InfoContext(ctx, "Account added", "account_id", acc.ID, "name", acc.Name)
	return acc, nil
}

// RenameAccount updates an account's display name in place.
func (s *LedgerService) RenameAccount(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.RenameAccount(id, name); err != nil {
		return err
	}
	acc, _ := s.ledger.Account(id)
	s.persist(ctx, "rename account", s.store.RenameAccount(ctx, id, acc.Name))
	slog.InfoContext(ctx, "Account renamed", "account_id", id, "name", acc.Name)
	return nil
}

// DeleteAccount removes an account and everything recorded against it.
// Callers are expected to have confirmed the action with the user first;
// the operation itself is irreversible.
func (s *LedgerService) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.DeleteAccount(id); err != nil {
		return err
	}
	s.persist(ctx, "delete account", s.store.DeleteAccount(ctx, id))
	slog.InfoContext(ctx, "Account deleted", "account_id", id)
	return nil
}

// Balance returns the current balance for an account.
func (s *LedgerService) Balance(id string) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Balance(id)
}

// PreviewBalance computes the balance that would result from the amounts
// without committing anything.
func (s *LedgerService) PreviewBalance(id string, a core.Amounts) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.PreviewBalance(id, a)
}

// Record appends a validated transaction, persists it, and publishes a
// sync message for the export worker.
func (s *LedgerService) Record(ctx context.Context, id string, a core.Amounts, note string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.ledger.Record(id, a, note)
	if err != nil {
		return core.Transaction{}, err
	}
	s.persist(ctx, "append transaction", s.store.AppendTransaction(ctx, id, tx))

	if err := s.publishSyncMessage(ctx, id, tx.ID); err != nil {
		// The transaction is saved locally; the periodic worker sweep
		// picks it up later.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"account_id", id, "tx_id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"account_id", id,
		"tx_id", tx.ID,
		"balance_cents", tx.Balance.Cents)
	return tx, nil
}

// Transactions returns an account's history, newest first.
func (s *LedgerService) Transactions(id string) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Transactions(id)
}

// Summary aggregates spent/saved/wants across an account's history.
func (s *LedgerService) Summary(id string) core.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Summary(id)
}

func (s *LedgerService) publishSyncMessage(ctx context.Context, accountID string, txID int64) error {
	if s.amqpClient == nil {
		return nil
	}
	return s.amqpClient.PublishTransactionSync(ctx, accountID, txID)
}

// persist logs a failed store write. In-memory state stays authoritative
// for the session either way.
func (s *LedgerService) persist(ctx context.Context, op string, err error) {
	if err != nil {
		slog.ErrorContext(ctx, "Persistence failed", "operation", op, "error", err)
	}
}

// Close releases the AMQP connection if one was configured.
func (s *LedgerService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp: %w", err)
		}
	}
	return nil
}
