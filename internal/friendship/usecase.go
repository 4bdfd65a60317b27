package friendship

import (
	"context"

	profilemodel "github.com/yuzutyaso/chatsite/internal/profile/model"
)

type Usecase interface {
	// Search resolves a short id to at most one profile, excluding the
	// caller's own. A miss is (nil, nil), not an error.
	Search(ctx context.Context, callerID, shortID string) (*profilemodel.Profile, error)

	// AddFriend establishes the symmetric relation by writing both
	// directional rows. Idempotent: re-running after a partial failure
	// completes the missing direction without erroring on the present one.
	AddFriend(ctx context.Context, ownerID, peerID string) error

	ListFriends(ctx context.Context, ownerID string) ([]*profilemodel.Profile, error)
}
