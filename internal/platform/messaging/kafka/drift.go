package kafka

import (
	"context"
	"time"

	"github.com/searchforge/searchforge/internal/shared/events"
)

// PublishDrift emits an index drift event for a url the reconciler gave up
// on. Publish failures are swallowed: drift reporting is advisory and must
// never block the storage path.
func (p *EventPublisher) PublishDrift(ctx context.Context, url string, attempts int, lastError string) {
	event, err := events.NewEvent(url, "content", events.EventTypeIndexDrift, events.IndexDrift{
		URL:       url,
		Attempts:  attempts,
		LastError: lastError,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	_ = p.Publish(ctx, event)
}
