package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// BillCreatedMessage announces a bill persisted locally. It carries only the
// ID; consumers load the full bill from the database.
type BillCreatedMessage struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBillCreatedMessage creates a new message stamped with the current time
func NewBillCreatedMessage(id, email string) *BillCreatedMessage {
	return &BillCreatedMessage{
		ID:        id,
		Email:     email,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BillCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillCreatedMessageFromJSON creates a message from JSON bytes
func BillCreatedMessageFromJSON(data []byte) (*BillCreatedMessage, error) {
	var msg BillCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("bill created message without id")
	}
	return &msg, nil
}
