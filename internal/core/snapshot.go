package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Snapshot is the full persisted ledger state: accounts in display order,
// the selected account id, and the per-account histories (newest first).
// Balances are not persisted; they are rebuilt at load time from the head of
// each history.
type Snapshot struct {
	Accounts     []Account                `json:"accounts"`
	Selected     string                   `json:"selected,omitempty"`
	Transactions map[string][]Transaction `json:"transactions"`
}

// Snapshot exports the ledger state for persistence.
func (l *Ledger) Snapshot() Snapshot {
	s := Snapshot{
		Accounts:     l.Accounts(),
		Selected:     l.selected,
		Transactions: make(map[string][]Transaction, len(l.txs)),
	}
	for id, txs := range l.txs {
		cp := make([]Transaction, len(txs))
		copy(cp, txs)
		s.Transactions[id] = cp
	}
	return s
}

// FromSnapshot rebuilds a ledger from persisted state. Balances are derived
// from the head of each account's history (zero when empty). Empty
// snapshots produce a fresh default ledger so the application always starts
// with at least one account.
func FromSnapshot(s Snapshot) *Ledger {
	if len(s.Accounts) == 0 && len(s.Transactions) == 0 {
		return NewLedger()
	}
	l := &Ledger{
		txs:      make(map[string][]Transaction),
		balances: make(map[string]Money),
		now:      time.Now,
	}
	l.accounts = append(l.accounts, s.Accounts...)
	for id, txs := range s.Transactions {
		if len(txs) == 0 {
			continue
		}
		cp := make([]Transaction, len(txs))
		copy(cp, txs)
		l.txs[id] = cp
		l.balances[id] = cp[0].Balance
		if cp[0].ID > l.lastTxID {
			l.lastTxID = cp[0].ID
		}
	}
	// Older blobs carried only the transaction map; synthesize accounts from
	// its keys so that data stays reachable.
	if len(l.accounts) == 0 {
		for id := range s.Transactions {
			l.accounts = append(l.accounts, Account{ID: id, Name: titleFromID(id)})
		}
		sort.Slice(l.accounts, func(i, j int) bool { return l.accounts[i].Name < l.accounts[j].Name })
	}
	if len(l.accounts) == 0 {
		return NewLedger()
	}
	l.selected = s.Selected
	if _, ok := l.Account(l.selected); !ok {
		l.selected = l.accounts[0].ID
	}
	return l
}

// EncodeSnapshot serializes a snapshot to its JSON blob form.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a persisted blob. Two shapes are accepted: the
// current full-state form, and the legacy form that is a bare map of
// account id to transaction list. A malformed blob is not an error for the
// caller to die on; it decodes to an empty snapshot.
func DecodeSnapshot(data []byte) Snapshot {
	if len(data) == 0 {
		return Snapshot{}
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err == nil && (len(s.Accounts) > 0 || len(s.Transactions) > 0) {
		return s
	}
	var legacy map[string][]Transaction
	if err := json.Unmarshal(data, &legacy); err == nil && len(legacy) > 0 {
		return Snapshot{Transactions: legacy}
	}
	return Snapshot{}
}

// titleFromID turns a slug-style id ("credit-card") into a display name
// ("Credit Card"). Best effort for legacy blobs only.
func titleFromID(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return id
	}
	return strings.Join(words, " ")
}
