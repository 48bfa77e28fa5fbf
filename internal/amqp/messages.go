package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// EntrySyncMessage asks the worker to deliver a journaled entry. It carries
// only the journal UID; the worker reads the entry itself.
type EntrySyncMessage struct {
	UID       string    `json:"uid"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(uid string) *EntrySyncMessage {
	return &EntrySyncMessage{
		UID:       uid,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntrySyncMessageFromJSON decodes a message and rejects one without a UID.
func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UID == "" {
		return nil, errors.New("entry sync message without uid")
	}
	return &msg, nil
}
