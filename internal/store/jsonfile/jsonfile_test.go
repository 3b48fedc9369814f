package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tracker/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", DefaultFileName))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)
	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Accounts) != 0 || len(snap.Transactions) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path(), []byte("{{{not json"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load must not fail on malformed blob: %v", err)
	}
	if len(snap.Accounts) != 0 || len(snap.Transactions) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMutationsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	acc := core.Account{ID: "a1", Name: "Checking"}
	if err := s.AddAccount(ctx, acc); err != nil {
		t.Fatalf("add account: %v", err)
	}
	tx := core.Transaction{ID: 1, Deposit: core.Money{Cents: 10000}, Balance: core.Money{Cents: 10000}, Timestamp: "6/1/2025, 12:00:00 PM"}
	if err := s.AppendTransaction(ctx, "a1", tx); err != nil {
		t.Fatalf("append: %v", err)
	}
	tx2 := core.Transaction{ID: 2, Spent: core.Money{Cents: 3000}, Balance: core.Money{Cents: 7000}, Timestamp: "6/1/2025, 12:00:05 PM", Note: "groceries"}
	if err := s.AppendTransaction(ctx, "a1", tx2); err != nil {
		t.Fatalf("append: %v", err)
	}

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Accounts) != 1 || snap.Accounts[0] != acc {
		t.Fatalf("accounts = %+v", snap.Accounts)
	}
	if snap.Selected != "a1" {
		t.Fatalf("selected = %q", snap.Selected)
	}
	txs := snap.Transactions["a1"]
	if len(txs) != 2 {
		t.Fatalf("history length = %d", len(txs))
	}
	if txs[0] != tx2 || txs[1] != tx {
		t.Fatalf("history not newest-first: %+v", txs)
	}
}

func TestRenameAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.AddAccount(ctx, core.Account{ID: "a1", Name: "Checking"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddAccount(ctx, core.Account{ID: "a2", Name: "Savings"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AppendTransaction(ctx, "a2", core.Transaction{ID: 1, Deposit: core.Money{Cents: 100}, Balance: core.Money{Cents: 100}}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := s.RenameAccount(ctx, "a1", "Everyday"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := s.DeleteAccount(ctx, "a2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Accounts) != 1 || snap.Accounts[0].Name != "Everyday" {
		t.Fatalf("accounts = %+v", snap.Accounts)
	}
	if _, ok := snap.Transactions["a2"]; ok {
		t.Fatalf("deleted account history survived")
	}
	if snap.Selected != "a1" {
		t.Fatalf("selected = %q, want fallback a1", snap.Selected)
	}
}

func TestSetSelected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.AddAccount(ctx, core.Account{ID: "a1", Name: "Checking"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddAccount(ctx, core.Account{ID: "a2", Name: "Savings"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.SetSelected(ctx, "a1"); err != nil {
		t.Fatalf("set selected: %v", err)
	}
	snap, _ := s.Load(ctx)
	if snap.Selected != "a1" {
		t.Fatalf("selected = %q", snap.Selected)
	}
}
