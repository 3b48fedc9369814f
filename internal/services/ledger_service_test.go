package services

import (
	"context"
	"errors"
	"testing"

	"tracker/internal/core"
	"tracker/internal/store/memory"
)

func newTestService(t *testing.T) (*LedgerService, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc, err := New(context.Background(), st, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, st
}

func TestNewSeedsDefaultsFromEmptyStore(t *testing.T) {
	svc, _ := newTestService(t)

	accounts := svc.Accounts()
	if len(accounts) != 3 {
		t.Fatalf("expected 3 default accounts, got %d", len(accounts))
	}
	if svc.Selected() != accounts[0].ID {
		t.Errorf("expected first account selected, got %q", svc.Selected())
	}
}

func TestRecordMirrorsToStore(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	id := svc.Selected()

	tx, err := svc.Record(ctx, id, core.Amounts{Deposit: core.Money{Cents: 10000}}, "payday")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if tx.Balance.Cents != 10000 {
		t.Errorf("balance = %d, want 10000", tx.Balance.Cents)
	}

	snap, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := snap.Transactions[id]
	if len(got) != 1 || got[0].ID != tx.ID {
		t.Fatalf("store history = %+v, want one entry with id %d", got, tx.ID)
	}
}

func TestRecordRejectsOverdraft(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	id := svc.Selected()

	_, err := svc.Record(ctx, id, core.Amounts{Spent: core.Money{Cents: 500}}, "")
	if !errors.Is(err, core.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	snap, _ := st.Load(ctx)
	if len(snap.Transactions[id]) != 0 {
		t.Errorf("rejected transaction leaked into the store")
	}
}

func TestAccountLifecycleMirrorsToStore(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	acc, err := svc.AddAccount(ctx, "Vacation")
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	if svc.Selected() != acc.ID {
		t.Errorf("new account not selected")
	}

	if err := svc.RenameAccount(ctx, acc.ID, "Travel"); err != nil {
		t.Fatalf("RenameAccount: %v", err)
	}
	if err := svc.DeleteAccount(ctx, acc.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	snap, _ := st.Load(ctx)
	for _, a := range snap.Accounts {
		if a.ID == acc.ID {
			t.Fatalf("deleted account still in store: %+v", a)
		}
	}
	if snap.Selected == acc.ID {
		t.Errorf("store still points at deleted account")
	}
}

func TestSelectPersists(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	accounts := svc.Accounts()

	if err := svc.Select(ctx, accounts[1].ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	snap, _ := st.Load(ctx)
	if snap.Selected != accounts[1].ID {
		t.Errorf("store selected = %q, want %q", snap.Selected, accounts[1].ID)
	}
}

func TestSummaryAndPreview(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	id := svc.Selected()

	if _, err := svc.Record(ctx, id, core.Amounts{Deposit: core.Money{Cents: 20000}}, ""); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := svc.Record(ctx, id, core.Amounts{Spent: core.Money{Cents: 3000}, Saved: core.Money{Cents: 2000}}, ""); err != nil {
		t.Fatalf("Record: %v", err)
	}

	sum := svc.Summary(id)
	if sum.Spent.Cents != 3000 || sum.Saved.Cents != 2000 || sum.Wants.Cents != 0 {
		t.Errorf("summary = %+v", sum)
	}

	preview := svc.PreviewBalance(id, core.Amounts{Wants: core.Money{Cents: 1000}})
	if preview.Cents != 14000 {
		t.Errorf("preview = %d, want 14000", preview.Cents)
	}
	if svc.Balance(id).Cents != 15000 {
		t.Errorf("preview mutated the balance")
	}
}

func TestNewRestoresFromStore(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	first, err := New(ctx, st, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id := first.Selected()
	if _, err := first.Record(ctx, id, core.Amounts{Deposit: core.Money{Cents: 7000}}, ""); err != nil {
		t.Fatalf("Record: %v", err)
	}

	second, err := New(ctx, st, nil)
	if err != nil {
		t.Fatalf("New (restore): %v", err)
	}
	if second.Balance(id).Cents != 7000 {
		t.Errorf("restored balance = %d, want 7000", second.Balance(id).Cents)
	}
	if len(second.Transactions(id)) != 1 {
		t.Errorf("restored history length = %d, want 1", len(second.Transactions(id)))
	}
}
