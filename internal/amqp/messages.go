package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventTransactionRecorded = "transaction.recorded"
	EventTransactionUpdated  = "transaction.updated"
	EventTransactionDeleted  = "transaction.deleted"
	EventEntrySettled        = "entry.settled"
	EventEntryUnsettled      = "entry.unsettled"
	EventEntryDeleted        = "entry.deleted"
)

// LedgerEvent notifies consumers that a ledger mutation happened. It
// carries identifiers only; the audit worker fetches whatever detail it
// needs from the database.
type LedgerEvent struct {
	Event      string    `json:"event"`
	EntityKind string    `json:"entityKind"`
	EntityID   string    `json:"entityId"`
	Detail     string    `json:"detail,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(event, entityKind, entityID, detail string) *LedgerEvent {
	return &LedgerEvent{
		Event:      event,
		EntityKind: entityKind,
		EntityID:   entityID,
		Detail:     detail,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
