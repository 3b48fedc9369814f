package core

import (
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	l := NewLedger()
	checking := l.Accounts()[0]
	savings := l.Accounts()[1]
	if _, err := l.Record(checking.ID, Amounts{Deposit: cents(10000)}, "payday"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := l.Record(checking.ID, Amounts{Spent: cents(3000)}, ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := l.Record(savings.ID, Amounts{Deposit: cents(500)}, ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := l.Select(savings.ID); err != nil {
		t.Fatalf("select: %v", err)
	}

	data, err := EncodeSnapshot(l.Snapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored := FromSnapshot(DecodeSnapshot(data))

	if got, want := len(restored.Accounts()), len(l.Accounts()); got != want {
		t.Fatalf("accounts = %d, want %d", got, want)
	}
	if restored.Selected() != savings.ID {
		t.Fatalf("selected = %q, want %q", restored.Selected(), savings.ID)
	}
	for _, acc := range l.Accounts() {
		want := l.Transactions(acc.ID)
		got := restored.Transactions(acc.ID)
		if len(got) != len(want) {
			t.Fatalf("%s history = %d entries, want %d", acc.Name, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s tx %d = %+v, want %+v", acc.Name, i, got[i], want[i])
			}
		}
		if restored.Balance(acc.ID) != l.Balance(acc.ID) {
			t.Fatalf("%s balance = %v, want %v", acc.Name, restored.Balance(acc.ID), l.Balance(acc.ID))
		}
	}
}

func TestFromSnapshotRebuildsBalances(t *testing.T) {
	s := Snapshot{
		Accounts: []Account{{ID: "a1", Name: "Checking"}, {ID: "a2", Name: "Savings"}},
		Transactions: map[string][]Transaction{
			"a1": {
				{ID: 2, Spent: cents(3000), Balance: cents(7000), Timestamp: "6/1/2025, 12:00:05 PM"},
				{ID: 1, Deposit: cents(10000), Balance: cents(10000), Timestamp: "6/1/2025, 12:00:00 PM"},
			},
		},
	}
	l := FromSnapshot(s)
	if l.Balance("a1").Cents != 7000 {
		t.Fatalf("a1 balance = %v, want head-of-history 70.00", l.Balance("a1"))
	}
	if l.Balance("a2").Cents != 0 {
		t.Fatalf("a2 balance = %v, want 0 for empty history", l.Balance("a2"))
	}
	if l.Selected() != "a1" {
		t.Fatalf("selected = %q, want first account", l.Selected())
	}
}

func TestDecodeSnapshotLegacyBlob(t *testing.T) {
	// The legacy blob is a bare map of account id to history, no account
	// list. Accounts are synthesized from the keys.
	blob := []byte(`{
		"checking": [
			{"id": 2, "deposit": 0, "spent": 30, "saved": 0, "wants": 0, "balance": 70, "timestamp": "6/1/2025, 12:00:05 PM"},
			{"id": 1, "deposit": 100, "spent": 0, "saved": 0, "wants": 0, "balance": 100, "timestamp": "6/1/2025, 12:00:00 PM", "note": "payday"}
		],
		"credit-card": []
	}`)
	l := FromSnapshot(DecodeSnapshot(blob))
	acc, ok := l.Account("checking")
	if !ok {
		t.Fatalf("checking account not synthesized")
	}
	if acc.Name != "Checking" {
		t.Fatalf("synthesized name = %q", acc.Name)
	}
	if l.Balance("checking").Cents != 7000 {
		t.Fatalf("balance = %v, want 70.00", l.Balance("checking"))
	}
	txs := l.Transactions("checking")
	if len(txs) != 2 || txs[1].Note != "payday" {
		t.Fatalf("history not restored: %+v", txs)
	}
}

func TestDecodeSnapshotMalformed(t *testing.T) {
	for _, blob := range [][]byte{nil, {}, []byte("not json"), []byte(`{"x":`), []byte(`[1,2,3]`), []byte(`{}`)} {
		s := DecodeSnapshot(blob)
		if len(s.Accounts) != 0 || len(s.Transactions) != 0 {
			t.Fatalf("DecodeSnapshot(%q) not empty: %+v", blob, s)
		}
		// A malformed blob still yields a usable ledger.
		l := FromSnapshot(s)
		if len(l.Accounts()) == 0 {
			t.Fatalf("ledger from empty snapshot has no accounts")
		}
	}
}
