// Package events defines the domain events emitted by the storage layer.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event represents a storage domain event
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregateId"`
	AggregateType string          `json:"aggregateType"`
	EventType     string          `json:"eventType"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEvent creates a new event
func NewEvent(aggregateID, aggregateType, eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Timestamp:     time.Now().UTC(),
		Payload:       payloadBytes,
	}, nil
}

// EventTypeIndexDrift marks a url abandoned by the reconciler after it
// exhausted its repair attempts.
const EventTypeIndexDrift = "storage.index.drift"

// IndexDrift is the payload for EventTypeIndexDrift
type IndexDrift struct {
	URL       string    `json:"url"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError"`
	Timestamp time.Time `json:"timestamp"`
}
