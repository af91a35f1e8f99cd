package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := IndexDrift{
		URL:       "https://example.com/a",
		Attempts:  10,
		LastError: "connection reset",
		Timestamp: time.Now().UTC(),
	}

	event, err := NewEvent("https://example.com/a", "content", EventTypeIndexDrift, payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "https://example.com/a", event.AggregateID)
	assert.Equal(t, "content", event.AggregateType)
	assert.Equal(t, EventTypeIndexDrift, event.EventType)
	assert.False(t, event.Timestamp.IsZero())

	var decoded IndexDrift
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, payload.URL, decoded.URL)
	assert.Equal(t, payload.Attempts, decoded.Attempts)
}

func TestNewEventIDsAreUnique(t *testing.T) {
	a, err := NewEvent("k", "content", EventTypeIndexDrift, nil)
	require.NoError(t, err)
	b, err := NewEvent("k", "content", EventTypeIndexDrift, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
