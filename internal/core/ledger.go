package core

import (
	"time"

	"github.com/google/uuid"
)

// Ledger owns the set of accounts, the per-account transaction history
// (newest first) and the per-account running balance. It is a plain
// in-memory structure: every operation runs to completion synchronously and
// is all-or-nothing. Callers that share a Ledger across goroutines are
// responsible for serializing access.
type Ledger struct {
	accounts []Account
	txs      map[string][]Transaction
	balances map[string]Money
	selected string
	lastTxID int64
	now      func() time.Time
}

// defaultAccountNames seeds a fresh ledger. At least one account must exist
// at all times, so a ledger is never created empty.
var defaultAccountNames = []string{"Checking", "Savings", "Credit Card"}

// NewLedger creates a ledger seeded with the default accounts, the first of
// which is selected.
func NewLedger() *Ledger {
	l := &Ledger{
		txs:      make(map[string][]Transaction),
		balances: make(map[string]Money),
		now:      time.Now,
	}
	for _, name := range defaultAccountNames {
		acc := Account{ID: uuid.NewString(), Name: name}
		l.accounts = append(l.accounts, acc)
	}
	l.selected = l.accounts[0].ID
	return l
}

// Accounts returns the accounts in display order.
func (l *Ledger) Accounts() []Account {
	out := make([]Account, len(l.accounts))
	copy(out, l.accounts)
	return out
}

// Account returns the account with the given id.
func (l *Ledger) Account(id string) (Account, bool) {
	for _, a := range l.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// Selected returns the id of the currently selected account.
func (l *Ledger) Selected() string {
	return l.selected
}

// Select makes the given account the active one.
func (l *Ledger) Select(id string) error {
	if _, ok := l.Account(id); !ok {
		return ErrAccountNotFound
	}
	l.selected = id
	return nil
}

// AddAccount appends a new account with a fresh id, selects it, and
// initializes its balance to zero with an empty history. The trimmed name
// must be non-empty and unique case-insensitively across accounts.
func (l *Ledger) AddAccount(name string) (Account, error) {
	trimmed := NormalizeName(name)
	if trimmed == "" {
		return Account{}, ErrEmptyName
	}
	for _, a := range l.accounts {
		if SameName(a.Name, trimmed) {
			return Account{}, ErrDuplicateName
		}
	}
	acc := Account{ID: uuid.NewString(), Name: trimmed}
	l.accounts = append(l.accounts, acc)
	l.selected = acc.ID
	return acc, nil
}

// RenameAccount updates an account's name in place. The id never changes.
func (l *Ledger) RenameAccount(id, newName string) error {
	trimmed := NormalizeName(newName)
	if trimmed == "" {
		return ErrEmptyName
	}
	idx := -1
	for i, a := range l.accounts {
		if a.ID == id {
			idx = i
			continue
		}
		if SameName(a.Name, trimmed) {
			return ErrDuplicateName
		}
	}
	if idx < 0 {
		return ErrAccountNotFound
	}
	l.accounts[idx].Name = trimmed
	return nil
}

// DeleteAccount removes the account and all its transactions and balance
// entries. The last remaining account cannot be deleted. If the deleted
// account was selected, the first remaining account becomes selected.
func (l *Ledger) DeleteAccount(id string) error {
	if len(l.accounts) == 1 {
		return ErrLastAccount
	}
	idx := -1
	for i, a := range l.accounts {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrAccountNotFound
	}
	l.accounts = append(l.accounts[:idx], l.accounts[idx+1:]...)
	delete(l.txs, id)
	delete(l.balances, id)
	if l.selected == id {
		l.selected = l.accounts[0].ID
	}
	return nil
}

// Balance returns the current balance for an account: the balance of its
// newest transaction, or zero if it has none.
func (l *Ledger) Balance(id string) Money {
	return l.balances[id]
}

// PreviewBalance computes the balance that would result from applying the
// amounts, without mutating anything. Used for the live preview and to gate
// the save action.
func (l *Ledger) PreviewBalance(id string, a Amounts) Money {
	return l.balances[id].Add(a.Net())
}

// Record validates and appends a transaction to the account's history.
// The resulting balance must not go negative; on failure no state changes.
// The created transaction is prepended (newest first) and becomes the
// account's current balance.
func (l *Ledger) Record(id string, a Amounts, note string) (Transaction, error) {
	if _, ok := l.Account(id); !ok {
		return Transaction{}, ErrAccountNotFound
	}
	if err := a.Validate(); err != nil {
		return Transaction{}, err
	}
	balance := l.PreviewBalance(id, a)
	if balance.Cents < 0 {
		return Transaction{}, ErrInsufficientBalance
	}
	now := l.now()
	tx := Transaction{
		ID:        l.nextTxID(now),
		Deposit:   a.Deposit,
		Spent:     a.Spent,
		Saved:     a.Saved,
		Wants:     a.Wants,
		Balance:   balance,
		Timestamp: now.Format("1/2/2006, 3:04:05 PM"),
		Note:      NormalizeName(note),
	}
	l.txs[id] = append([]Transaction{tx}, l.txs[id]...)
	l.balances[id] = balance
	return tx, nil
}

// nextTxID derives a transaction id from the creation time, bumped past the
// previous id so ids stay unique when two entries land in the same
// millisecond.
func (l *Ledger) nextTxID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= l.lastTxID {
		id = l.lastTxID + 1
	}
	l.lastTxID = id
	return id
}

// Transactions returns the account's history, newest first.
func (l *Ledger) Transactions(id string) []Transaction {
	out := make([]Transaction, len(l.txs[id]))
	copy(out, l.txs[id])
	return out
}

// Summary sums the spent, saved and wants fields across the account's full
// history. Pure aggregation, no side effects.
func (l *Ledger) Summary(id string) Summary {
	var s Summary
	for _, tx := range l.txs[id] {
		s.Spent = s.Spent.Add(tx.Spent)
		s.Saved = s.Saved.Add(tx.Saved)
		s.Wants = s.Wants.Add(tx.Wants)
	}
	return s
}
