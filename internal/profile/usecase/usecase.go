package usecase

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/yuzutyaso/chatsite/internal/profile"
	model "github.com/yuzutyaso/chatsite/internal/profile/model"
	"github.com/yuzutyaso/chatsite/pkg/errors"
	"github.com/yuzutyaso/chatsite/pkg/logger"
	"github.com/yuzutyaso/chatsite/pkg/shortid"
)

// maxShortIDAttempts bounds collision fallback. A 7-hex-char space makes a
// second collision for the same seed vanishingly unlikely, so a small cap
// is enough before giving up.
const maxShortIDAttempts = 5

type ProfileUsecase struct {
	repo   profile.Repository
	logger *logger.Logger
}

func NewProfileUsecase(repo profile.Repository, logger *logger.Logger) *ProfileUsecase {
	return &ProfileUsecase{repo: repo, logger: logger}
}

// EnsureProfile provisions the caller's profile exactly once. Existing rows
// are returned unchanged. A lost race against a concurrent sign-in for the
// same uid falls back to re-reading the winner's row; a short-id collision
// with another profile retries derivation with a perturbed seed.
func (uc *ProfileUsecase) EnsureProfile(ctx context.Context, userID, seed string) (*model.Profile, error) {
	if userID == "" {
		return nil, errors.InvalidArg("user id is required")
	}

	existing, err := uc.repo.GetByID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !stderrors.Is(err, profile.ErrNotFound) {
		uc.logger.Error("database error reading profile", "user_id", userID, "err", err)
		return nil, errors.Internal("internal server error")
	}

	name := displayNameFromSeed(seed)

	for attempt := 0; attempt < maxShortIDAttempts; attempt++ {
		p := &model.Profile{
			ID:      userID,
			Name:    name,
			ShortID: shortid.Derive(shortid.Perturb(seed, attempt)),
		}

		created, err := uc.repo.Create(ctx, p)
		if err != nil {
			if stderrors.Is(err, profile.ErrShortIDConflict) {
				uc.logger.Warn("short id collision, re-deriving",
					"user_id", userID, "attempt", attempt)
				continue
			}
			uc.logger.Error("database error creating profile", "user_id", userID, "err", err)
			return nil, errors.Internal("internal server error")
		}
		if !created {
			// Concurrent sign-in won the insert. The winner's row is the
			// profile; both callers observe the same short id.
			winner, err := uc.repo.GetByID(ctx, userID)
			if err != nil {
				uc.logger.Error("profile missing after lost provisioning race",
					"user_id", userID, "err", err)
				return nil, errors.ErrProvisioning
			}
			return winner, nil
		}
		return p, nil
	}

	uc.logger.Error("short id derivation exhausted", "user_id", userID)
	return nil, errors.ErrProvisioning
}

// displayNameFromSeed defaults the mutable display name from the email-like
// seed's local part. Empty for anonymous sign-ups.
func displayNameFromSeed(seed string) string {
	if seed == "" {
		return ""
	}
	if i := strings.IndexByte(seed, '@'); i > 0 {
		return seed[:i]
	}
	return seed
}
