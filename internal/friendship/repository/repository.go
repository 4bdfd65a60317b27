package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	model "github.com/yuzutyaso/chatsite/internal/friendship/model"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

type FriendshipRepository struct {
	db     *bun.DB
	logger *logger.Logger
}

func NewFriendshipRepository(db *bun.DB, logger *logger.Logger) *FriendshipRepository {
	return &FriendshipRepository{db: db, logger: logger}
}

func (r *FriendshipRepository) Insert(ctx context.Context, f *model.Friendship) (bool, error) {
	// The composite pk makes re-inserting an existing pair a no-op instead
	// of an error; that is what keeps AddFriend retries idempotent.
	res, err := r.db.NewInsert().
		Model(f).
		On("CONFLICT (owner_id, peer_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, "friendshipRepo.Insert.Insert: ")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "friendshipRepo.Insert.RowsAffected: ")
	}
	return n > 0, nil
}

func (r *FriendshipRepository) Exists(ctx context.Context, ownerID, peerID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*model.Friendship)(nil)).
		Where("owner_id = ? AND peer_id = ?", ownerID, peerID).
		Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, "friendshipRepo.Exists.Exists: ")
	}
	return exists, nil
}

func (r *FriendshipRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Friendship, error) {
	var rows []*model.Friendship
	err := r.db.NewSelect().
		Model(&rows).
		Relation("Peer").
		Where("friendship.owner_id = ?", ownerID).
		Where("friendship.status = ?", model.StatusAccepted).
		Order("friendship.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "friendshipRepo.ListByOwner.Scan: ")
	}
	return rows, nil
}
