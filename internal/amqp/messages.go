package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangeMessage announces that local ledger state changed. It carries
// only the entity kind and id; the worker reads the current state from the
// store before pushing, so stale messages collapse into one fresh push.
type LedgerChangeMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

func NewLedgerChangeMessage(entity, id string) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Entity:    entity,
		ID:        id,
		ChangedAt: time.Now(),
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
