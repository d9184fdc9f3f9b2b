package amqp

import (
	"encoding/json"
	"time"
)

// Message types carried in the AMQP delivery Type header. The consumer
// dispatches on them, defaulting to sync for untyped deliveries.
const (
	MessageTypeSync   = "transaction.sync"
	MessageTypeDelete = "transaction.delete"
)

// TransactionSyncMessage asks the worker to export one ledger entry.
// It carries only the ID, the worker fetches the full entry from the
// database so the queue never holds stale amounts.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates a sync message for the given entry ID
func NewTransactionSyncMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON creates a message from JSON bytes
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// TransactionDeleteMessage asks the worker to remove an exported entry.
type TransactionDeleteMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionDeleteMessage creates a delete message for the given entry ID
func NewTransactionDeleteMessage(id string) *TransactionDeleteMessage {
	return &TransactionDeleteMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionDeleteMessageFromJSON creates a message from JSON bytes
func TransactionDeleteMessageFromJSON(data []byte) (*TransactionDeleteMessage, error) {
	var msg TransactionDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
