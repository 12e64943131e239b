package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/shared"
)

// Message carries a committed sale to the report projection. It is written in the
// same database transaction as the sale entry, so every committed sale has one.
type Message struct {
	ID            int64               `json:"id"`
	SaleEntryID   uuid.UUID           `json:"sale_entry_id"`
	ItemID        int64               `json:"item_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(record *report.SaleRecord) (*Message, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	return &Message{
		SaleEntryID: record.SaleEntryID,
		ItemID:      record.ItemID,
		Payload:     payload,
		Status:      shared.OutboxStatusPending,
		CreatedAt:   time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	m.touch()
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	m.touch()
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	m.touch()
}

func (m *Message) touch() {
	now := time.Now()
	m.LastAttemptAt = &now
}

// SaleRecord decodes the payload
func (m *Message) SaleRecord() (*report.SaleRecord, error) {
	var record report.SaleRecord
	if err := json.Unmarshal(m.Payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
