// Package jsonfile persists the ledger as a single JSON blob on disk, the
// equivalent of the browser-local key-value entry this tracker grew out of.
// Every mutation re-serializes the entire state; reads tolerate a missing or
// malformed file and fall back to an empty ledger.
package jsonfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"tracker/internal/core"
)

// DefaultFileName matches the original storage key of the tracker.
const DefaultFileName = "money-tracker-history.json"

type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a store writing to the given file path. The parent directory
// is created if needed.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Load reads the persisted blob. Missing or malformed files load as an
// empty snapshot.
func (s *Store) Load(ctx context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx), nil
}

// AddAccount implements store.Mutator.
func (s *Store) AddAccount(ctx context.Context, acc core.Account) error {
	return s.mutate(ctx, func(snap *core.Snapshot) {
		snap.Accounts = append(snap.Accounts, acc)
		snap.Selected = acc.ID
	})
}

// RenameAccount implements store.Mutator.
func (s *Store) RenameAccount(ctx context.Context, id, name string) error {
	return s.mutate(ctx, func(snap *core.Snapshot) {
		for i := range snap.Accounts {
			if snap.Accounts[i].ID == id {
				snap.Accounts[i].Name = name
				return
			}
		}
	})
}

// DeleteAccount implements store.Mutator.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	return s.mutate(ctx, func(snap *core.Snapshot) {
		for i := range snap.Accounts {
			if snap.Accounts[i].ID == id {
				snap.Accounts = append(snap.Accounts[:i], snap.Accounts[i+1:]...)
				break
			}
		}
		delete(snap.Transactions, id)
		if snap.Selected == id && len(snap.Accounts) > 0 {
			snap.Selected = snap.Accounts[0].ID
		}
	})
}

// AppendTransaction implements store.Mutator. The entry is prepended so the
// blob keeps histories newest first.
func (s *Store) AppendTransaction(ctx context.Context, accountID string, tx core.Transaction) error {
	return s.mutate(ctx, func(snap *core.Snapshot) {
		if snap.Transactions == nil {
			snap.Transactions = make(map[string][]core.Transaction)
		}
		snap.Transactions[accountID] = append([]core.Transaction{tx}, snap.Transactions[accountID]...)
	})
}

// SetSelected implements store.Mutator.
func (s *Store) SetSelected(ctx context.Context, id string) error {
	return s.mutate(ctx, func(snap *core.Snapshot) {
		snap.Selected = id
	})
}

// mutate applies one mutation to the decoded blob and rewrites the whole
// file. Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated blob.
func (s *Store) mutate(ctx context.Context, apply func(*core.Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.read(ctx)
	apply(&snap)

	data, err := core.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger blob: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger blob: %w", err)
	}
	return nil
}

func (s *Store) read(ctx context.Context) core.Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "Unreadable ledger blob, starting empty", "path", s.path, "error", err)
		}
		return core.Snapshot{}
	}
	snap := core.DecodeSnapshot(data)
	if len(data) > 0 && len(snap.Accounts) == 0 && len(snap.Transactions) == 0 {
		slog.WarnContext(ctx, "Malformed ledger blob, ignoring contents", "path", s.path, "size", len(data))
	}
	return snap
}

// Path returns the blob location, mainly for logging.
func (s *Store) Path() string { return s.path }
