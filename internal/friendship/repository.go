package friendship

import (
	"context"

	model "github.com/yuzutyaso/chatsite/internal/friendship/model"
)

type Repository interface {
	// Insert writes one directional row. A unique-pair conflict is
	// swallowed at the store (DO NOTHING) and reported as inserted=false.
	Insert(ctx context.Context, f *model.Friendship) (bool, error)

	Exists(ctx context.Context, ownerID, peerID string) (bool, error)

	// ListByOwner returns the owner's accepted outbound rows with the peer
	// profile joined, oldest friendship first.
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Friendship, error)
}
