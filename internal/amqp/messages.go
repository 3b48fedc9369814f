package amqp

import (
	"encoding/json"
	"time"
)

// TransactionSyncMessage tells the worker that a transaction was recorded.
// It carries only the keys; the worker fetches the full row from the
// database before exporting.
type TransactionSyncMessage struct {
	AccountID string    `json:"account_id"`
	TxID      int64     `json:"tx_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates a sync message for one recorded
// transaction.
func NewTransactionSyncMessage(accountID string, txID int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		AccountID: accountID,
		TxID:      txID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON creates a message from JSON bytes.
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
