package usecase

import (
	"context"
	stderrors "errors"

	"github.com/yuzutyaso/chatsite/internal/friendship"
	model "github.com/yuzutyaso/chatsite/internal/friendship/model"
	"github.com/yuzutyaso/chatsite/internal/profile"
	profilemodel "github.com/yuzutyaso/chatsite/internal/profile/model"
	"github.com/yuzutyaso/chatsite/pkg/errors"
	"github.com/yuzutyaso/chatsite/pkg/logger"
	"github.com/yuzutyaso/chatsite/pkg/shortid"
)

type FriendshipUsecase struct {
	repo     friendship.Repository
	profiles profile.Repository
	logger   *logger.Logger
}

func NewFriendshipUsecase(repo friendship.Repository, profiles profile.Repository, logger *logger.Logger) *FriendshipUsecase {
	return &FriendshipUsecase{repo: repo, profiles: profiles, logger: logger}
}

func (uc *FriendshipUsecase) Search(ctx context.Context, callerID, shortID string) (*profilemodel.Profile, error) {
	// The unassigned sentinel is shared by every anonymous profile and
	// must never resolve to one.
	if shortID == "" || shortID == shortid.Unassigned {
		return nil, nil
	}

	p, err := uc.profiles.GetByShortID(ctx, shortID)
	if err != nil {
		if stderrors.Is(err, profile.ErrNotFound) {
			return nil, nil
		}
		uc.logger.Error("database error searching short id", "short_id", shortID, "err", err)
		return nil, errors.Internal("internal server error")
	}
	if p.ID == callerID {
		return nil, nil
	}
	return p, nil
}

// AddFriend writes both directional rows of the symmetric relation. The
// unique-pair conflict swallow in the repository makes re-invocation safe:
// a retry after a partial failure only creates the missing direction.
func (uc *FriendshipUsecase) AddFriend(ctx context.Context, ownerID, peerID string) error {
	if ownerID == "" || peerID == "" {
		return errors.InvalidArg("owner and peer ids are required")
	}
	if ownerID == peerID {
		return errors.ErrSelfFriend
	}

	// Only the fully symmetric relation counts as "already friends". A
	// one-sided leftover from a partial write falls through so the retry
	// can create the missing direction.
	forward, err := uc.repo.Exists(ctx, ownerID, peerID)
	if err != nil {
		uc.logger.Error("database error checking friendship", "owner_id", ownerID, "err", err)
		return errors.Internal("internal server error")
	}
	reverse, err := uc.repo.Exists(ctx, peerID, ownerID)
	if err != nil {
		uc.logger.Error("database error checking friendship", "owner_id", peerID, "err", err)
		return errors.Internal("internal server error")
	}
	if forward && reverse {
		return errors.ErrAlreadyFriends
	}

	if _, err := uc.repo.Insert(ctx, &model.Friendship{
		OwnerID: ownerID,
		PeerID:  peerID,
		Status:  model.StatusAccepted,
	}); err != nil {
		uc.logger.Error("friendship insert failed", "owner_id", ownerID, "peer_id", peerID, "err", err)
		return errors.Unavailable("could not create friendship")
	}

	if _, err := uc.repo.Insert(ctx, &model.Friendship{
		OwnerID: peerID,
		PeerID:  ownerID,
		Status:  model.StatusAccepted,
	}); err != nil {
		// The initiating direction is kept; the relation converges to
		// symmetry on the next AddFriend call.
		uc.logger.Warn("reverse friendship insert failed, relation is one-sided",
			"owner_id", ownerID, "peer_id", peerID, "err", err)
		return errors.ErrFriendshipPartial(err)
	}

	return nil
}

func (uc *FriendshipUsecase) ListFriends(ctx context.Context, ownerID string) ([]*profilemodel.Profile, error) {
	rows, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		uc.logger.Error("database error listing friends", "owner_id", ownerID, "err", err)
		return nil, errors.Internal("internal server error")
	}

	friends := make([]*profilemodel.Profile, 0, len(rows))
	for _, row := range rows {
		if row.Peer == nil {
			// Row without a resolvable profile: filtered, not an error.
			uc.logger.Warn("dropping friendship with missing peer profile",
				"owner_id", ownerID, "peer_id", row.PeerID)
			continue
		}
		friends = append(friends, row.Peer)
	}
	return friends, nil
}
