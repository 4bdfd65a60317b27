package pgfeed

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"testing"

	model "github.com/yuzutyaso/chatsite/internal/chat/model"
	"github.com/yuzutyaso/chatsite/internal/feed"
	profilemodel "github.com/yuzutyaso/chatsite/internal/profile/model"
	"github.com/yuzutyaso/chatsite/pkg/logger"
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

	tables := []any{
		(*profilemodel.Profile)(nil),
		(*model.Message)(nil),
	}
	for _, tbl := range tables {
		if _, err := testDB.NewCreateTable().Model(tbl).IfNotExists().Exec(ctx); err != nil {
			testDB.Close()
			log.Fatalf("failed to create table for %T: %v", tbl, err)
		}
	}
	if _, err := testDB.ExecContext(ctx, TriggerSQL); err != nil {
		testDB.Close()
		log.Fatalf("failed to install notify trigger: %v", err)
	}

	code := m.Run()

	testDB.Close()

	os.Exit(code)
}

// awaitEvent keeps inserting rows until one comes back through the feed,
// since notifications raised before LISTEN is active are not replayed.
func awaitEvent(t *testing.T, ctx context.Context, sub feed.Subscription, roomID string) feed.MessageEvent {
	t.Helper()
	deadline := time.After(15 * time.Second)
	for {
		m := &model.Message{RoomID: roomID, AuthorID: "uid-alice", Text: "ping"}
		_, err := testDB.NewInsert().Model(m).Exec(ctx)
		require.NoError(t, err)

		select {
		case ev := <-sub.Events():
			return ev
		case <-deadline:
			t.Fatal("no notification reached the feed")
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func Test_Run_DeliversInsertedMessages(t *testing.T) {
	t.Cleanup(func() {
		_, err := testDB.ExecContext(context.Background(), `TRUNCATE TABLE messages CASCADE`)
		require.NoError(t, err)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := New(testDB, "message_created", &logger.Logger{})
	sub, err := l.SubscribeMessages(ctx, "alice:bob")
	require.NoError(t, err)
	defer sub.Close()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	ev := awaitEvent(t, ctx, sub, "alice:bob")
	require.NotNil(t, ev.Message)
	assert.NotEmpty(t, ev.Message.ID)
	assert.Equal(t, "alice:bob", ev.Message.RoomID)
	assert.Equal(t, "ping", ev.Message.Text)
	assert.False(t, ev.Message.CreatedAt.IsZero())

	// Cancelling the context must release the LISTEN session and unblock
	// Run; the notification channel does not observe ctx on its own.
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
