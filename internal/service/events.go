package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/wine_shop/pkg/logging"
)

const (
	TopicOrderEvents   = "order_events"
	TopicUserEvents    = "user_events"
	TopicCommentEvents = "comment_events"
	TopicWineEvents    = "wine_events"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Event struct {
	Type       string    `json:"type"`
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// publish is best effort: the state change is already committed.
func publish(ctx context.Context, p EventPublisher, topic, key string, ev Event) {
	if p == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	if err := p.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", ev.Type, "error", err)
	}
}
