package repository

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"testing"

	"github.com/yuzutyaso/chatsite/internal/profile"
	model "github.com/yuzutyaso/chatsite/internal/profile/model"
	"github.com/yuzutyaso/chatsite/pkg/logger"
	"github.com/yuzutyaso/chatsite/pkg/shortid"
)

var testDB *bun.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("chatsite"),
		postgres.WithUsername("chatsite"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable", "application_name=test")
	if err != nil {
		log.Printf("failed to get connection string: %v", err)
		return
	}

	connector := pgdriver.NewConnector(pgdriver.WithDSN(connStr))
	sqlDB := sql.OpenDB(connector)
	testDB = bun.NewDB(sqlDB, pgdialect.New())

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	if _, err := testDB.NewCreateTable().Model((*model.Profile)(nil)).IfNotExists().Exec(ctx); err != nil {
		testDB.Close()
		log.Fatalf("failed to create profiles table: %v", err)
	}
	// Short ids are unique except for the unassigned sentinel shared by
	// anonymous profiles.
	if _, err := testDB.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_short_id ON profiles (short_id) WHERE short_id <> '0000000'`,
	); err != nil {
		testDB.Close()
		log.Fatalf("failed to create short_id index: %v", err)
	}

	code := m.Run()

	testDB.Close()

	os.Exit(code)
}

func truncateProfiles(t *testing.T) {
	t.Cleanup(func() {
		_, err := testDB.ExecContext(context.Background(), `TRUNCATE TABLE profiles CASCADE`)
		require.NoError(t, err)
	})
}

func Test_CreateAndGetByID(t *testing.T) {
	truncateProfiles(t)
	repo := NewProfileRepository(testDB, &logger.Logger{})

	p := &model.Profile{ID: "uid-alice", Name: "alice", ShortID: "abc1234"}
	created, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, created)

	fetched, err := repo.GetByID(context.Background(), "uid-alice")
	require.NoError(t, err)
	assert.Equal(t, p.Name, fetched.Name)
	assert.Equal(t, p.ShortID, fetched.ShortID)
	assert.False(t, fetched.CreatedAt.IsZero(), "created_at should be set by DB")
}

func Test_GetByID_Miss(t *testing.T) {
	truncateProfiles(t)
	repo := NewProfileRepository(testDB, &logger.Logger{})

	_, err := repo.GetByID(context.Background(), "uid-nobody")
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func Test_GetByShortID(t *testing.T) {
	truncateProfiles(t)
	repo := NewProfileRepository(testDB, &logger.Logger{})

	p := &model.Profile{ID: "uid-alice", Name: "alice", ShortID: "abc1234"}
	_, err := repo.Create(context.Background(), p)
	require.NoError(t, err)

	fetched, err := repo.GetByShortID(context.Background(), "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "uid-alice", fetched.ID)

	_, err = repo.GetByShortID(context.Background(), "fffffff")
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func Test_Create_SameUidIsSwallowed(t *testing.T) {
	truncateProfiles(t)
	repo := NewProfileRepository(testDB, &logger.Logger{})

	created, err := repo.Create(context.Background(), &model.Profile{ID: "uid-alice", Name: "alice", ShortID: "abc1234"})
	require.NoError(t, err)
	require.True(t, created)

	// The losing side of a provisioning race: same uid, no error, no write.
	created, err = repo.Create(context.Background(), &model.Profile{ID: "uid-alice", Name: "other", ShortID: "xyz9999"})
	require.NoError(t, err)
	assert.False(t, created)

	fetched, err := repo.GetByID(context.Background(), "uid-alice")
	require.NoError(t, err)
	assert.Equal(t, "abc1234", fetched.ShortID, "losing insert must not rewrite the row")
}

func Test_Create_ShortIDCollisionSurfaces(t *testing.T) {
	truncateProfiles(t)
	repo := NewProfileRepository(testDB, &logger.Logger{})

	created, err := repo.Create(context.Background(), &model.Profile{ID: "uid-alice", Name: "alice", ShortID: "abc1234"})
	require.NoError(t, err)
	require.True(t, created)

	_, err = repo.Create(context.Background(), &model.Profile{ID: "uid-bob", Name: "bob", ShortID: "abc1234"})
	assert.ErrorIs(t, err, profile.ErrShortIDConflict)
}

func Test_Create_UnassignedSentinelDoesNotCollide(t *testing.T) {
	truncateProfiles(t)
	repo := NewProfileRepository(testDB, &logger.Logger{})

	for _, id := range []string{"uid-anon-1", "uid-anon-2", "uid-anon-3"} {
		created, err := repo.Create(context.Background(), &model.Profile{ID: id, ShortID: shortid.Unassigned})
		require.NoError(t, err)
		assert.True(t, created, "anonymous profile %s must insert", id)
	}
}
