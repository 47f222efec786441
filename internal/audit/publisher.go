package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sellerflow/pkg/attrs"
	"sellerflow/pkg/requestcontext"
)

// Publisher accepts audit events. Implementations must not block the request
// path; dropping under pressure is preferable to stalling a handler.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Log builds an event from the request context plus key-value attrs, logs it,
// and hands it to the publisher. A nil publisher degrades to logging only, so
// services can call this unconditionally.
func Log(ctx context.Context, logger *slog.Logger, publisher Publisher, action string, kv ...any) {
	if logger != nil {
		logger.InfoContext(ctx, "audit: "+action, kv...)
	}
	if publisher == nil {
		return
	}

	event := Event{
		ID:         uuid.New(),
		Action:     action,
		UserID:     attrs.ExtractStringer(kv, "user_id"),
		RequestID:  requestcontext.RequestID(ctx),
		Device:     requestcontext.Device(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		OccurredAt: requestcontext.Now(ctx),
	}
	if event.UserID == "" {
		event.UserID = attrs.ExtractString(kv, "user_id")
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || key == "user_id" {
			continue
		}
		if val, ok := kv[i+1].(string); ok {
			if event.Details == nil {
				event.Details = make(map[string]string)
			}
			event.Details[key] = val
		}
	}

	if err := publisher.Publish(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "audit publish failed",
			"action", action,
			"error", err,
		)
	}
}

// ChannelPublisher delivers events to an in-process channel drained by the
// Worker. Publish never blocks; events are dropped when the buffer is full.
type ChannelPublisher struct {
	events chan Event
	logger *slog.Logger
}

// NewChannelPublisher creates a publisher with the given buffer size.
func NewChannelPublisher(buffer int, logger *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{
		events: make(chan Event, buffer),
		logger: logger,
	}
}

// Events exposes the inbox for the Worker.
func (p *ChannelPublisher) Events() <-chan Event {
	return p.events
}

func (p *ChannelPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	select {
	case p.events <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event",
			"action", event.Action,
			"user_id", event.UserID,
		)
	}
	return nil
}
