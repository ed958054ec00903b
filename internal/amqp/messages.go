package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// TransactionRecordedMessage announces a row that was appended to the
// primary store. It carries the full row so consumers never read back.
type TransactionRecordedMessage struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// NewTransactionRecordedMessage builds a message with a fresh id.
func NewTransactionRecordedMessage(t core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		ID:          uuid.NewString(),
		Date:        t.Date.String(),
		Amount:      core.FormatAmount(t.Amount),
		Category:    string(t.Category),
		Description: t.Description,
		RecordedAt:  time.Now().UTC(),
	}
}

// Transaction decodes and validates the carried row.
func (m *TransactionRecordedMessage) Transaction() (core.Transaction, error) {
	t, err := core.DecodeRecord([]string{m.Date, m.Amount, m.Category, m.Description}, core.DateLayout)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("message %s: %w", m.ID, err)
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("message %s: %w", m.ID, err)
	}
	return t, nil
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON creates a message from JSON bytes
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
