// Package memory is an in-memory persistence backend for tests and
// ephemeral runs. State lives only as long as the process.
package memory

import (
	"context"
	"sync"

	"tracker/internal/core"
)

type Store struct {
	mu   sync.Mutex
	snap core.Snapshot
}

func New() *Store {
	return &Store{snap: core.Snapshot{Transactions: make(map[string][]core.Transaction)}}
}

// NewFromSnapshot seeds the store with existing state.
func NewFromSnapshot(snap core.Snapshot) *Store {
	s := New()
	s.snap = snap
	if s.snap.Transactions == nil {
		s.snap.Transactions = make(map[string][]core.Transaction)
	}
	return s
}

func (s *Store) Load(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySnapshot(), nil
}

func (s *Store) AddAccount(_ context.Context, acc core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Accounts = append(s.snap.Accounts, acc)
	s.snap.Selected = acc.ID
	return nil
}

func (s *Store) RenameAccount(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Accounts {
		if s.snap.Accounts[i].ID == id {
			s.snap.Accounts[i].Name = name
			break
		}
	}
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Accounts {
		if s.snap.Accounts[i].ID == id {
			s.snap.Accounts = append(s.snap.Accounts[:i], s.snap.Accounts[i+1:]...)
			break
		}
	}
	delete(s.snap.Transactions, id)
	if s.snap.Selected == id && len(s.snap.Accounts) > 0 {
		s.snap.Selected = s.snap.Accounts[0].ID
	}
	return nil
}

func (s *Store) AppendTransaction(_ context.Context, accountID string, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Transactions[accountID] = append([]core.Transaction{tx}, s.snap.Transactions[accountID]...)
	return nil
}

func (s *Store) SetSelected(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Selected = id
	return nil
}

func (s *Store) copySnapshot() core.Snapshot {
	out := core.Snapshot{
		Accounts:     append([]core.Account(nil), s.snap.Accounts...),
		Selected:     s.snap.Selected,
		Transactions: make(map[string][]core.Transaction, len(s.snap.Transactions)),
	}
	for id, txs := range s.snap.Transactions {
		out.Transactions[id] = append([]core.Transaction(nil), txs...)
	}
	return out
}
