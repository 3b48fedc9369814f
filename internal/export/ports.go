// Package export defines the port for pushing recorded transactions to an
// external spreadsheet or similar sink.
package export

import (
	"context"

	"tracker/internal/store"
)

// TransactionExporter appends one recorded transaction to the external
// sink. Implementations must be safe to retry: the worker redelivers on
// failure.
type TransactionExporter interface {
	Append(ctx context.Context, p store.PendingTransaction) error
}
