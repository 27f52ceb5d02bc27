package amqp

import (
	"encoding/json"
	"time"
)

// Entities and actions carried by ledger events.
const (
	EntityTransaction   = "transaction"
	EntityCreditCard    = "credit_card"
	EntityCardCharge    = "card_charge"
	EntityRecurringBill = "recurring_bill"

	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// LedgerEventMessage announces a completed write. It carries only the entity
// kind, the action and the record id; consumers fetch details from the
// database if they need them.
type LedgerEventMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event stamped with the current time.
func NewLedgerEventMessage(entity, action string, id int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
