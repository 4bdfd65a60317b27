package profile

import (
	"context"
	"errors"

	model "github.com/yuzutyaso/chatsite/internal/profile/model"
)

var (
	ErrNotFound = errors.New("profile not found")
	// ErrShortIDConflict means the derived short id already belongs to
	// another profile. The provisioner retries with a perturbed seed.
	ErrShortIDConflict = errors.New("short id already in use")
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByShortID(ctx context.Context, shortID string) (*model.Profile, error)

	// Create inserts the profile with insert-if-not-exists semantics on the
	// primary key. Returns false when a row for the uid already existed
	// (lost provisioning race); the caller re-reads in that case.
	Create(ctx context.Context, p *model.Profile) (bool, error)
}
