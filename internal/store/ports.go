// Package store defines the ports for ledger persistence backends.
package store

import (
	"context"

	"tracker/internal/core"
)

type (
	// Mutator mirrors ledger mutations into a persistence backend. Every
	// method persists one completed mutation; backends are free to rewrite
	// their whole blob or to apply the change granularly.
	Mutator interface {
		AddAccount(ctx context.Context, acc core.Account) error
		RenameAccount(ctx context.Context, id, name string) error
		DeleteAccount(ctx context.Context, id string) error
		AppendTransaction(ctx context.Context, accountID string, tx core.Transaction) error
		SetSelected(ctx context.Context, id string) error
	}

	// Loader reads the persisted ledger state at startup. An absent or
	// unreadable blob loads as an empty snapshot, never an error that
	// prevents startup.
	Loader interface {
		Load(ctx context.Context) (core.Snapshot, error)
	}

	// Store is a full persistence backend.
	Store interface {
		Mutator
		Loader
	}

	// PendingTransaction is a recorded transaction that has not been
	// exported yet, together with the account it belongs to.
	PendingTransaction struct {
		AccountID   string
		AccountName string
		Tx          core.Transaction
	}

	// TransactionGetter fetches a single recorded transaction. Used by the
	// sync worker to resolve AMQP messages.
	TransactionGetter interface {
		GetTransaction(ctx context.Context, accountID string, txID int64) (PendingTransaction, error)
	}

	// PendingLister returns transactions not yet exported, oldest first.
	PendingLister interface {
		ListPending(ctx context.Context, limit int) ([]PendingTransaction, error)
	}

	// SyncMarker flags a transaction as exported.
	SyncMarker interface {
		MarkSynced(ctx context.Context, accountID string, txID int64) error
	}
)
