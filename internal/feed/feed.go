// Package feed abstracts the store's realtime change feed: an
// at-least-once, possibly reordered stream of row-level notifications.
// Consumers dedup and reorder through the conversation merge rule, so
// implementations only need to deliver, not to order.
package feed

import (
	"context"

	model "github.com/yuzutyaso/chatsite/internal/chat/model"
)

type MessageEvent struct {
	Message *model.Message
}

type Feed interface {
	// SubscribeMessages delivers message-created events for one room.
	// Delivery stops deterministically when the subscription is closed or
	// ctx is cancelled.
	SubscribeMessages(ctx context.Context, roomID string) (Subscription, error)
}

type Subscription interface {
	Events() <-chan MessageEvent
	Close() error
}
