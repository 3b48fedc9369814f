package core

import (
	"errors"
	"testing"
	"time"
)

func cents(v int64) Money { return Money{Cents: v} }

func TestNewLedgerSeedsDefaults(t *testing.T) {
	l := NewLedger()
	accs := l.Accounts()
	if len(accs) != 3 {
		t.Fatalf("expected 3 default accounts, got %d", len(accs))
	}
	if accs[0].Name != "Checking" || accs[1].Name != "Savings" || accs[2].Name != "Credit Card" {
		t.Fatalf("unexpected default accounts: %+v", accs)
	}
	if l.Selected() != accs[0].ID {
		t.Fatalf("expected first account selected, got %q", l.Selected())
	}
	for _, a := range accs {
		if l.Balance(a.ID).Cents != 0 {
			t.Fatalf("expected zero starting balance for %s", a.Name)
		}
		if len(l.Transactions(a.ID)) != 0 {
			t.Fatalf("expected empty history for %s", a.Name)
		}
	}
}

func TestRecordScenario(t *testing.T) {
	l := NewLedger()
	id := l.Selected()

	tx, err := l.Record(id, Amounts{Deposit: cents(10000)}, "")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if tx.Balance.Cents != 10000 {
		t.Fatalf("deposit balance = %v, want 100.00", tx.Balance)
	}
	if got := len(l.Transactions(id)); got != 1 {
		t.Fatalf("history length = %d, want 1", got)
	}

	tx, err = l.Record(id, Amounts{Spent: cents(3000)}, "groceries")
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if tx.Balance.Cents != 7000 {
		t.Fatalf("spend balance = %v, want 70.00", tx.Balance)
	}
	txs := l.Transactions(id)
	if len(txs) != 2 {
		t.Fatalf("history length = %d, want 2", len(txs))
	}
	// Newest first: the spend entry precedes the deposit entry.
	if txs[0].Spent.Cents != 3000 || txs[1].Deposit.Cents != 10000 {
		t.Fatalf("history not newest-first: %+v", txs)
	}
	if txs[0].Note != "groceries" {
		t.Fatalf("note = %q, want groceries", txs[0].Note)
	}

	// Overdraft is rejected with no state change.
	if _, err := l.Record(id, Amounts{Spent: cents(20000)}, ""); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if l.Balance(id).Cents != 7000 {
		t.Fatalf("balance changed after rejected record: %v", l.Balance(id))
	}
	if got := len(l.Transactions(id)); got != 2 {
		t.Fatalf("history length changed after rejected record: %d", got)
	}
}

func TestRecordValidation(t *testing.T) {
	l := NewLedger()
	id := l.Selected()

	if _, err := l.Record(id, Amounts{Deposit: cents(-100)}, ""); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if _, err := l.Record("missing", Amounts{Deposit: cents(100)}, ""); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestBalanceMatchesHistoryHead(t *testing.T) {
	l := NewLedger()
	id := l.Selected()
	steps := []Amounts{
		{Deposit: cents(5000)},
		{Spent: cents(1200)},
		{Saved: cents(1000), Wants: cents(500)},
		{Deposit: cents(250)},
	}
	for _, a := range steps {
		if _, err := l.Record(id, a, ""); err != nil {
			t.Fatalf("record %+v: %v", a, err)
		}
		txs := l.Transactions(id)
		if l.Balance(id) != txs[0].Balance {
			t.Fatalf("balance %v != head balance %v", l.Balance(id), txs[0].Balance)
		}
	}
	if l.Balance(id).Cents != 5000-1200-1000-500+250 {
		t.Fatalf("final balance = %v", l.Balance(id))
	}
}

func TestTransactionIDsMonotonic(t *testing.T) {
	l := NewLedger()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	id := l.Selected()

	first, err := l.Record(id, Amounts{Deposit: cents(100)}, "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	second, err := l.Record(id, Amounts{Deposit: cents(100)}, "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("ids not increasing: %d then %d", first.ID, second.ID)
	}
}

func TestPreviewBalanceIsPure(t *testing.T) {
	l := NewLedger()
	id := l.Selected()
	if _, err := l.Record(id, Amounts{Deposit: cents(10000)}, ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := l.PreviewBalance(id, Amounts{Spent: cents(2500), Wants: cents(500)})
	if got.Cents != 7000 {
		t.Fatalf("preview = %v, want 70.00", got)
	}
	if l.Balance(id).Cents != 10000 {
		t.Fatalf("preview mutated balance: %v", l.Balance(id))
	}
	if len(l.Transactions(id)) != 1 {
		t.Fatalf("preview mutated history")
	}
}

func TestSummary(t *testing.T) {
	l := NewLedger()
	id := l.Selected()
	records := []Amounts{
		{Deposit: cents(20000)},
		{Spent: cents(3000), Saved: cents(1000)},
		{Spent: cents(500), Wants: cents(1500)},
	}
	for _, a := range records {
		if _, err := l.Record(id, a, ""); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	s := l.Summary(id)
	if s.Spent.Cents != 3500 || s.Saved.Cents != 1000 || s.Wants.Cents != 1500 {
		t.Fatalf("summary = %+v", s)
	}
	// Idempotent.
	if again := l.Summary(id); again != s {
		t.Fatalf("summary not stable: %+v vs %+v", again, s)
	}
}

func TestAddAccount(t *testing.T) {
	l := NewLedger()
	acc, err := l.AddAccount("  Travel Fund  ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if acc.Name != "Travel Fund" {
		t.Fatalf("name not trimmed: %q", acc.Name)
	}
	if acc.ID == "" {
		t.Fatalf("missing id")
	}
	if l.Selected() != acc.ID {
		t.Fatalf("new account not selected")
	}
	if l.Balance(acc.ID).Cents != 0 || len(l.Transactions(acc.ID)) != 0 {
		t.Fatalf("new account state not empty")
	}

	cases := []struct {
		name string
		want error
	}{
		{"travel fund", ErrDuplicateName}, // case-insensitive collision
		{"CHECKING", ErrDuplicateName},
		{"   ", ErrEmptyName},
		{"", ErrEmptyName},
	}
	for _, tc := range cases {
		before := len(l.Accounts())
		if _, err := l.AddAccount(tc.name); !errors.Is(err, tc.want) {
			t.Fatalf("AddAccount(%q) = %v, want %v", tc.name, err, tc.want)
		}
		if len(l.Accounts()) != before {
			t.Fatalf("AddAccount(%q) mutated state", tc.name)
		}
	}
}

func TestRenameAccount(t *testing.T) {
	l := NewLedger()
	accs := l.Accounts()
	checking, savings := accs[0], accs[1]

	if err := l.RenameAccount(checking.ID, "Everyday"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, ok := l.Account(checking.ID)
	if !ok || got.Name != "Everyday" {
		t.Fatalf("rename not applied: %+v", got)
	}
	if got.ID != checking.ID {
		t.Fatalf("rename changed id")
	}

	if err := l.RenameAccount(savings.ID, "everyday"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if err := l.RenameAccount(savings.ID, "  "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	// Renaming to its own current name is allowed (no self-collision).
	if err := l.RenameAccount(checking.ID, "Everyday"); err != nil {
		t.Fatalf("self rename: %v", err)
	}
	if err := l.RenameAccount("missing", "X"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	l := NewLedger()
	accs := l.Accounts()
	checking, savings, credit := accs[0], accs[1], accs[2]

	if _, err := l.Record(savings.ID, Amounts{Deposit: cents(4200)}, ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := l.Record(checking.ID, Amounts{Deposit: cents(100)}, ""); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := l.DeleteAccount(checking.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := l.Account(checking.ID); ok {
		t.Fatalf("account still present after delete")
	}
	if len(l.Transactions(checking.ID)) != 0 {
		t.Fatalf("transactions survived delete")
	}
	if l.Balance(checking.ID).Cents != 0 {
		t.Fatalf("balance survived delete")
	}
	// Other accounts untouched.
	if l.Balance(savings.ID).Cents != 4200 || len(l.Transactions(savings.ID)) != 1 {
		t.Fatalf("sibling account data touched by delete")
	}
	// Selected falls back to the first remaining account.
	if l.Selected() != savings.ID {
		t.Fatalf("selected = %q, want %q", l.Selected(), savings.ID)
	}

	if err := l.DeleteAccount(credit.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := l.DeleteAccount(savings.ID); !errors.Is(err, ErrLastAccount) {
		t.Fatalf("expected ErrLastAccount, got %v", err)
	}
	if len(l.Accounts()) != 1 {
		t.Fatalf("last-account guard mutated state")
	}
	if err := l.DeleteAccount("missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestSelect(t *testing.T) {
	l := NewLedger()
	savings := l.Accounts()[1]
	if err := l.Select(savings.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	if l.Selected() != savings.ID {
		t.Fatalf("selected = %q", l.Selected())
	}
	if err := l.Select("missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
