package chat

import (
	"context"
	"errors"

	model "github.com/yuzutyaso/chatsite/internal/chat/model"
)

// ErrRejected marks a write the store refused on authorization grounds.
// Never retried automatically.
var ErrRejected = errors.New("write rejected by store")

type MessageRepository interface {
	// ListRecent returns up to limit most recent messages for the room,
	// ascending by (created_at, id), with author profiles joined.
	ListRecent(ctx context.Context, roomID string, limit int) ([]*model.Message, error)

	Create(ctx context.Context, m *model.Message) error
}
