package amqp

import (
	"testing"
	"time"
)

func TestExportMessage_JSONRoundTrip(t *testing.T) {
	msg := NewUpsertMessage("t1")
	msg.Timestamp = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	back, err := ExportMessageFromJSON(data)
	if err != nil {
		t.Fatalf("ExportMessageFromJSON() error = %v", err)
	}
	if back.TransactionID != "t1" || back.Kind != ExportUpsert {
		t.Errorf("round trip = %+v", back)
	}
	if !back.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", back.Timestamp, msg.Timestamp)
	}
}

func TestNewDeleteMessage_CarriesRowSnapshot(t *testing.T) {
	msg := NewDeleteMessage("t1", "2024-06-15", "groceries", 12000)

	if msg.Kind != ExportDelete {
		t.Errorf("Kind = %q, want %q", msg.Kind, ExportDelete)
	}
	if msg.Date != "2024-06-15" || msg.Content != "groceries" || msg.Amount != 12000 {
		t.Errorf("snapshot = %+v", msg)
	}
}

func TestExportMessageFromJSON_RejectsGarbage(t *testing.T) {
	if _, err := ExportMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
