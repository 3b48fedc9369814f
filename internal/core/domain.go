package core

import (
	"errors"
	"strings"
)

type (
	// Account is a named bucket with its own transaction history and balance.
	// IDs are opaque and stable; renames never touch them.
	Account struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Amounts carries the four fields of a transaction entry. All of them
	// must be non-negative; an entry with every field zero is not
	// meaningful and is rejected at the boundary.
	Amounts struct {
		Deposit Money `json:"deposit"`
		Spent   Money `json:"spent"`
		Saved   Money `json:"saved"`
		Wants   Money `json:"wants"`
	}

	// Transaction is one immutable ledger entry. Balance is the running
	// balance after applying this entry. Timestamp is the human-readable
	// creation time shown in the history list.
	Transaction struct {
		ID        int64  `json:"id"`
		Deposit   Money  `json:"deposit"`
		Spent     Money  `json:"spent"`
		Saved     Money  `json:"saved"`
		Wants     Money  `json:"wants"`
		Balance   Money  `json:"balance"`
		Timestamp string `json:"timestamp"`
		Note      string `json:"note,omitempty"`
	}

	// Summary aggregates the spent/saved/wants fields across an account's
	// full history.
	Summary struct {
		Spent Money
		Saved Money
		Wants Money
	}
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrDuplicateName       = errors.New("an account with this name already exists")
	ErrEmptyName           = errors.New("account name is empty")
	ErrLastAccount         = errors.New("cannot delete the only remaining account")
	ErrInsufficientBalance = errors.New("transaction would result in a negative balance")
	ErrNegativeAmount      = errors.New("amounts must not be negative")
)

// Validate checks that no field is negative.
func (a Amounts) Validate() error {
	if a.Deposit.Cents < 0 || a.Spent.Cents < 0 || a.Saved.Cents < 0 || a.Wants.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// IsZero reports whether every field is zero.
func (a Amounts) IsZero() bool {
	return a.Deposit.Cents == 0 && a.Spent.Cents == 0 && a.Saved.Cents == 0 && a.Wants.Cents == 0
}

// Net is the signed effect of the amounts on a balance:
// deposit minus spent, saved and wants.
func (a Amounts) Net() Money {
	return Money{Cents: a.Deposit.Cents - a.Spent.Cents - a.Saved.Cents - a.Wants.Cents}
}

// Amounts returns the four amount fields of the transaction.
func (t Transaction) Amounts() Amounts {
	return Amounts{Deposit: t.Deposit, Spent: t.Spent, Saved: t.Saved, Wants: t.Wants}
}

// NormalizeName trims the candidate account name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// SameName compares account names case-insensitively, the uniqueness rule
// for account names.
func SameName(a, b string) bool {
	return strings.EqualFold(NormalizeName(a), NormalizeName(b))
}
