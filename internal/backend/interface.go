// Package backend selects and wires a persistence backend for the ledger.
package backend

import (
	"context"

	"tracker/internal/amqp"
	"tracker/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the store, the optional AMQP client, and a cleanup
// function. AMQPClient is nil when no broker is configured or the broker
// is unreachable.
type Result struct {
	Store      store.Store
	AMQPClient *amqp.Client
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// JSON file specific
	JSONFilePath string

	// SQLite specific
	SQLiteDBPath string

	// AMQP (optional for any backend)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Type represents the kind of persistence backend
type Type string

const (
	JSONFileBackend Type = "jsonfile"
	SQLiteBackend   Type = "sqlite"
	MemoryBackend   Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case JSONFileBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
