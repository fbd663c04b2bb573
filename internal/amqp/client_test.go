package amqp

import (
	"testing"
	"time"
)

func TestNewLedgerEvent(t *testing.T) {
	ev := NewLedgerEvent(EventTransactionRecorded, "transaction", "abc-123", "")

	if ev.Event != EventTransactionRecorded {
		t.Errorf("NewLedgerEvent() Event = %v, want %v", ev.Event, EventTransactionRecorded)
	}
	if ev.EntityKind != "transaction" {
		t.Errorf("NewLedgerEvent() EntityKind = %v, want transaction", ev.EntityKind)
	}
	if ev.EntityID != "abc-123" {
		t.Errorf("NewLedgerEvent() EntityID = %v, want abc-123", ev.EntityID)
	}
	if ev.Timestamp.IsZero() {
		t.Error("NewLedgerEvent() Timestamp should not be zero")
	}
	if time.Since(ev.Timestamp) > time.Second {
		t.Error("NewLedgerEvent() Timestamp should be recent")
	}
}

func TestLedgerEvent_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ev := &LedgerEvent{
		Event:      EventEntrySettled,
		EntityKind: "payable",
		EntityID:   "f2c9e0aa-0000-0000-0000-000000000001",
		Detail:     `{"value":"120.50"}`,
		Timestamp:  timestamp,
	}

	jsonBytes, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerEventFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON() error = %v", err)
	}

	if parsed.Event != ev.Event {
		t.Errorf("Parsed Event = %v, want %v", parsed.Event, ev.Event)
	}
	if parsed.EntityKind != ev.EntityKind {
		t.Errorf("Parsed EntityKind = %v, want %v", parsed.EntityKind, ev.EntityKind)
	}
	if parsed.EntityID != ev.EntityID {
		t.Errorf("Parsed EntityID = %v, want %v", parsed.EntityID, ev.EntityID)
	}
	if parsed.Detail != ev.Detail {
		t.Errorf("Parsed Detail = %v, want %v", parsed.Detail, ev.Detail)
	}
	if !parsed.Timestamp.Equal(ev.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, ev.Timestamp)
	}
}

func TestLedgerEvent_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"event": 42, "entity_id": true`)

	_, err := LedgerEventFromJSON(invalidJSON)
	if err == nil {
		t.Error("LedgerEventFromJSON() should fail with invalid JSON")
	}
}
