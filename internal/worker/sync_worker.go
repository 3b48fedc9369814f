// Package worker pushes recorded transactions from the database to the
// configured exporter, driven by AMQP messages with a periodic sweep as
// backup.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tracker/internal/amqp"
	"tracker/internal/export"
	"tracker/internal/storage"
	"tracker/internal/store"
)

// Repository is what the worker needs from the database.
type Repository interface {
	store.TransactionGetter
	store.PendingLister
	store.SyncMarker
}

type SyncWorker struct {
	repo      Repository
	exporter  export.TransactionExporter
	batchSize int
}

func NewSyncWorker(repo Repository, exporter export.TransactionExporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		repo:      repo,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"account_id", msg.AccountID,
		"tx_id", msg.TxID)

	pending, err := w.repo.GetTransaction(ctx, msg.AccountID, msg.TxID)
	if err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			// The account was deleted before the worker caught up. Nothing
			// left to export.
			slog.WarnContext(ctx, "Transaction vanished before export, dropping message",
				"account_id", msg.AccountID, "tx_id", msg.TxID)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.exportAndMark(ctx, pending)
}

// ProcessPendingTransactions exports transactions that have not been
// synced yet. This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.repo.ListPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.exportAndMark(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction",
				"account_id", p.AccountID, "tx_id", p.Tx.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains the pending backlog at worker startup to recover
// from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.repo.ListPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.exportAndMark(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"account_id", p.AccountID, "tx_id", p.Tx.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) exportAndMark(ctx context.Context, p store.PendingTransaction) error {
	if err := w.exporter.Append(ctx, p); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}

	if err := w.repo.MarkSynced(ctx, p.AccountID, p.Tx.ID); err != nil {
		// The export went through; the row gets re-exported next sweep,
		// which the sink tolerates as a duplicate row.
		slog.ErrorContext(ctx, "Failed to mark as synced",
			"account_id", p.AccountID, "tx_id", p.Tx.ID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Successfully synced transaction",
		"account_id", p.AccountID,
		"tx_id", p.Tx.ID,
		"balance_cents", p.Tx.Balance.Cents)

	return nil
}
