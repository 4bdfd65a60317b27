package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/yuzutyaso/chatsite/internal/profile"
	model "github.com/yuzutyaso/chatsite/internal/profile/model"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

type ProfileRepository struct {
	db     *bun.DB
	logger *logger.Logger
}

func NewProfileRepository(db *bun.DB, logger *logger.Logger) *ProfileRepository {
	return &ProfileRepository{db: db, logger: logger}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	p := new(model.Profile)
	err := r.db.NewSelect().Model(p).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrNotFound
		}
		return nil, errors.Wrap(err, "profileRepo.GetByID.Scan: ")
	}
	return p, nil
}

func (r *ProfileRepository) GetByShortID(ctx context.Context, shortID string) (*model.Profile, error) {
	p := new(model.Profile)
	err := r.db.NewSelect().Model(p).Where("short_id = ?", shortID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrNotFound
		}
		return nil, errors.Wrap(err, "profileRepo.GetByShortID.Scan: ")
	}
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) (bool, error) {
	// ON CONFLICT (id) DO NOTHING gives insert-if-not-exists on the uid;
	// a unique violation that still surfaces can only be the short_id
	// index, which the provisioner resolves by re-deriving.
	res, err := r.db.NewInsert().
		Model(p).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return false, profile.ErrShortIDConflict
		}
		return false, errors.Wrap(err, "profileRepo.Create.Insert: ")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "profileRepo.Create.RowsAffected: ")
	}
	return n > 0, nil
}

// 23505 = unique_violation
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
