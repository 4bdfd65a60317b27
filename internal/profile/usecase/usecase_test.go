package usecase

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzutyaso/chatsite/internal/profile"
	"github.com/yuzutyaso/chatsite/internal/profile/mocks"
	model "github.com/yuzutyaso/chatsite/internal/profile/model"
	appErrors "github.com/yuzutyaso/chatsite/pkg/errors"
	"github.com/yuzutyaso/chatsite/pkg/logger"
	"github.com/yuzutyaso/chatsite/pkg/shortid"
)

func newProfileUsecase(t *testing.T) (*ProfileUsecase, *mocks.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	return NewProfileUsecase(repo, &logger.Logger{}), repo
}

func Test_EnsureProfile_ExistingRowIsReturnedUnchanged(t *testing.T) {
	uc, repo := newProfileUsecase(t)

	existing := &model.Profile{ID: "uid-1", Name: "old name", ShortID: "abc1234"}
	repo.EXPECT().GetByID(gomock.Any(), "uid-1").Return(existing, nil)

	got, err := uc.EnsureProfile(context.Background(), "uid-1", "new-seed@example.com")
	require.NoError(t, err)
	// Re-provisioning with a different seed must not touch the row.
	assert.Same(t, existing, got)
}

func Test_EnsureProfile_ProvisionsFromSeed(t *testing.T) {
	uc, repo := newProfileUsecase(t)

	repo.EXPECT().GetByID(gomock.Any(), "uid-1").Return(nil, profile.ErrNotFound)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *model.Profile) (bool, error) {
			assert.Equal(t, "uid-1", p.ID)
			assert.Equal(t, "alice", p.Name)
			assert.Equal(t, shortid.Derive("alice@example.com"), p.ShortID)
			return true, nil
		})

	got, err := uc.EnsureProfile(context.Background(), "uid-1", "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, got.ShortID, shortid.Length)
}

func Test_EnsureProfile_AnonymousGetsUnassignedShortID(t *testing.T) {
	uc, repo := newProfileUsecase(t)

	repo.EXPECT().GetByID(gomock.Any(), "uid-anon").Return(nil, profile.ErrNotFound)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *model.Profile) (bool, error) {
			assert.Equal(t, shortid.Unassigned, p.ShortID)
			assert.Empty(t, p.Name)
			return true, nil
		})

	got, err := uc.EnsureProfile(context.Background(), "uid-anon", "")
	require.NoError(t, err)
	assert.Equal(t, shortid.Unassigned, got.ShortID)
}

func Test_EnsureProfile_LostRaceReturnsWinnerRow(t *testing.T) {
	uc, repo := newProfileUsecase(t)

	winner := &model.Profile{ID: "uid-1", Name: "alice", ShortID: "aaaaaaa"}
	gomock.InOrder(
		repo.EXPECT().GetByID(gomock.Any(), "uid-1").Return(nil, profile.ErrNotFound),
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, nil),
		repo.EXPECT().GetByID(gomock.Any(), "uid-1").Return(winner, nil),
	)

	got, err := uc.EnsureProfile(context.Background(), "uid-1", "alice@example.com")
	require.NoError(t, err)
	assert.Same(t, winner, got)
}

func Test_EnsureProfile_LostRaceWithMissingWinnerFails(t *testing.T) {
	uc, repo := newProfileUsecase(t)

	gomock.InOrder(
		repo.EXPECT().GetByID(gomock.Any(), "uid-1").Return(nil, profile.ErrNotFound),
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, nil),
		repo.EXPECT().GetByID(gomock.Any(), "uid-1").Return(nil, profile.ErrNotFound),
	)

	_, err := uc.EnsureProfile(context.Background(), "uid-1", "alice@example.com")
	assert.ErrorIs(t, err, appErrors.ErrProvisioning)
}

func Test_EnsureProfile_ShortIDCollisionRetriesWithPerturbedSeed(t *testing.T) {
	uc, repo := newProfileUsecase(t)

	const seed = "alice@example.com"
	first := shortid.Derive(seed)
	second := shortid.Derive(shortid.Perturb(seed, 1))
	require.NotEqual(t, first, second)

	repo.EXPECT().GetByID(gomock.Any(), "uid-1").Return(nil, profile.ErrNotFound)
	gomock.InOrder(
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *model.Profile) (bool, error) {
				assert.Equal(t, first, p.ShortID)
				return false, profile.ErrShortIDConflict
			}),
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *model.Profile) (bool, error) {
				assert.Equal(t, second, p.ShortID)
				return true, nil
			}),
	)

	got, err := uc.EnsureProfile(context.Background(), "uid-1", seed)
	require.NoError(t, err)
	assert.Equal(t, second, got.ShortID)
}

func Test_EnsureProfile_CollisionExhaustionGivesUp(t *testing.T) {
	uc, repo := newProfileUsecase(t)

	repo.EXPECT().GetByID(gomock.Any(), "uid-1").Return(nil, profile.ErrNotFound)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(false, profile.ErrShortIDConflict).
		Times(maxShortIDAttempts)

	_, err := uc.EnsureProfile(context.Background(), "uid-1", "alice@example.com")
	assert.ErrorIs(t, err, appErrors.ErrProvisioning)
}

func Test_EnsureProfile_RequiresUserID(t *testing.T) {
	uc, _ := newProfileUsecase(t)

	_, err := uc.EnsureProfile(context.Background(), "", "alice@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeInvalidArgument, appErrors.CodeOf(err))
}

func Test_DisplayNameFromSeed(t *testing.T) {
	assert.Equal(t, "alice", displayNameFromSeed("alice@example.com"))
	assert.Equal(t, "handle", displayNameFromSeed("handle"))
	assert.Empty(t, displayNameFromSeed(""))
}
