package amqp

import (
	"encoding/json"
	"time"
)

const (
	ExportUpsert ExportKind = "upsert"
	ExportDelete ExportKind = "delete"
)

type ExportKind string

// ExportMessage tells the worker that a transaction needs exporting to the
// spreadsheet. It carries only the ID and kind; the worker re-reads the row
// from storage so the message stays valid even if the transaction changes
// again before it is consumed. Delete messages carry a snapshot of the row
// fields needed to locate it in the sheet, since the row is already gone
// from storage.
type ExportMessage struct {
	TransactionID string     `json:"transaction_id"`
	Kind          ExportKind `json:"kind"`
	Date          string     `json:"date,omitempty"`
	Content       string     `json:"content,omitempty"`
	Amount        int64      `json:"amount,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

// NewUpsertMessage creates an export message for a created or updated
// transaction.
func NewUpsertMessage(transactionID string) *ExportMessage {
	return &ExportMessage{
		TransactionID: transactionID,
		Kind:          ExportUpsert,
		Timestamp:     time.Now(),
	}
}

// NewDeleteMessage creates an export message for a deleted transaction.
func NewDeleteMessage(transactionID, date, content string, amount int64) *ExportMessage {
	return &ExportMessage{
		TransactionID: transactionID,
		Kind:          ExportDelete,
		Date:          date,
		Content:       content,
		Amount:        amount,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportMessageFromJSON creates a message from JSON bytes
func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
