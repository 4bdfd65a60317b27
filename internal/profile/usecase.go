package profile

import (
	"context"

	model "github.com/yuzutyaso/chatsite/internal/profile/model"
)

type Usecase interface {
	// EnsureProfile returns the existing profile for userID, or lazily
	// provisions one with a short id derived from seed. Never mutates an
	// existing profile; safe under concurrent sign-ins for the same uid.
	EnsureProfile(ctx context.Context, userID, seed string) (*model.Profile, error)
}
