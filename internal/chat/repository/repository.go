package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/yuzutyaso/chatsite/internal/chat"
	model "github.com/yuzutyaso/chatsite/internal/chat/model"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

type MessageRepository struct {
	db     *bun.DB
	logger *logger.Logger
}

func NewMessageRepository(db *bun.DB, logger *logger.Logger) *MessageRepository {
	return &MessageRepository{db: db, logger: logger}
}

func (r *MessageRepository) ListRecent(ctx context.Context, roomID string, limit int) ([]*model.Message, error) {
	var msgs []*model.Message
	// Newest-first with a limit selects the retained window, then the
	// slice is reversed into (created_at, id) ascending order.
	err := r.db.NewSelect().
		Model(&msgs).
		Relation("Author").
		Where("message.room_id = ?", roomID).
		Order("message.created_at DESC", "message.id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.ListRecent.Scan: ")
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	_, err := r.db.NewInsert().Model(m).Returning("*").Exec(ctx)
	if err != nil {
		if isPermissionDenied(err) {
			return chat.ErrRejected
		}
		return errors.Wrap(err, "messageRepo.Create.Insert: ")
	}
	return nil
}

// 42501 = insufficient_privilege (row-level security and grants both
// surface it).
func isPermissionDenied(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "42501"
	}
	return false
}
