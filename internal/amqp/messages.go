package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by change messages.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// LedgerChangeMessage announces that one of the snapshot collections was
// mutated. It is intentionally light: consumers fetch the current snapshot
// from the primary store instead of trusting message payloads.
type LedgerChangeMessage struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewLedgerChangeMessage(collection, op, id string) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Collection: collection,
		Op:         op,
		ID:         id,
		Timestamp:  time.Now(),
	}
}

func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
