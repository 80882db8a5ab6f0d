package amqp

import (
	"encoding/json"
	"time"
)

// BatchSavedMessage announces a persisted entry batch. It carries only the
// record ids; the worker re-reads the full rows from the database so the
// mirror never sees data the store did not confirm.
type BatchSavedMessage struct {
	IDs       []int64   `json:"ids"`
	Date      string    `json:"date"`
	Type      string    `json:"type"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBatchSavedMessage(ids []int64, date, recordType string) *BatchSavedMessage {
	return &BatchSavedMessage{
		IDs:       ids,
		Date:      date,
		Type:      recordType,
		Count:     len(ids),
		Timestamp: time.Now(),
	}
}

func (m *BatchSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BatchSavedMessageFromJSON(data []byte) (*BatchSavedMessage, error) {
	var msg BatchSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
