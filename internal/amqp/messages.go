package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind says what happened to a boat proposal.
type EventKind string

const (
	BoatUpserted EventKind = "upserted"
	BoatDeleted  EventKind = "deleted"
)

// BoatEventMessage carries only the boat ID and version; the worker reads
// the current row from the database before exporting it.
type BoatEventMessage struct {
	BoatID    string    `json:"boat_id"`
	Kind      EventKind `json:"kind"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBoatEventMessage(boatID string, kind EventKind, version int64) *BoatEventMessage {
	return &BoatEventMessage{
		BoatID:    boatID,
		Kind:      kind,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}

func (m *BoatEventMessage) Validate() error {
	if m.BoatID == "" {
		return fmt.Errorf("boat event without boat id")
	}
	switch m.Kind {
	case BoatUpserted, BoatDeleted:
		return nil
	default:
		return fmt.Errorf("unknown boat event kind %q", m.Kind)
	}
}

func (m *BoatEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BoatEventMessageFromJSON decodes and validates a message body.
func BoatEventMessageFromJSON(data []byte) (*BoatEventMessage, error) {
	var msg BoatEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
