package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/yuzutyaso/chatsite/internal/chat/model"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

func Test_Hub_RoutesByRoom(t *testing.T) {
	hub := NewHub(&logger.Logger{})
	ctx := context.Background()

	subAB, err := hub.SubscribeMessages(ctx, "alice:bob")
	require.NoError(t, err)
	defer subAB.Close()
	subCD, err := hub.SubscribeMessages(ctx, "carol:dave")
	require.NoError(t, err)
	defer subCD.Close()

	hub.Publish(&model.Message{ID: "m1", RoomID: "alice:bob"})

	select {
	case ev := <-subAB.Events():
		assert.Equal(t, "m1", ev.Message.ID)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive its room's event")
	}

	select {
	case ev := <-subCD.Events():
		t.Fatalf("event leaked to the wrong room: %+v", ev)
	default:
	}
}

func Test_Hub_FansOutToAllRoomSubscribers(t *testing.T) {
	hub := NewHub(&logger.Logger{})
	ctx := context.Background()

	first, err := hub.SubscribeMessages(ctx, "alice:bob")
	require.NoError(t, err)
	defer first.Close()
	second, err := hub.SubscribeMessages(ctx, "alice:bob")
	require.NoError(t, err)
	defer second.Close()

	hub.Publish(&model.Message{ID: "m1", RoomID: "alice:bob"})

	for _, sub := range []Subscription{first, second} {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, "m1", ev.Message.ID)
		case <-time.After(time.Second):
			t.Fatal("fan-out missed a subscriber")
		}
	}
}

func Test_Hub_CloseEndsTheEventStream(t *testing.T) {
	hub := NewHub(&logger.Logger{})

	sub, err := hub.SubscribeMessages(context.Background(), "alice:bob")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, ok := <-sub.Events()
	assert.False(t, ok, "events channel must be closed")

	// Publishing after close must not panic.
	hub.Publish(&model.Message{ID: "m1", RoomID: "alice:bob"})
}

func Test_Hub_ContextCancelClosesSubscription(t *testing.T) {
	hub := NewHub(&logger.Logger{})
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := hub.SubscribeMessages(ctx, "alice:bob")
	require.NoError(t, err)

	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Events():
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func Test_Hub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(&logger.Logger{})

	sub, err := hub.SubscribeMessages(context.Background(), "alice:bob")
	require.NoError(t, err)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subBuffer+10; i++ {
			hub.Publish(&model.Message{ID: fmt.Sprintf("m%d", i), RoomID: "alice:bob"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Len(t, sub.Events(), subBuffer)
}

func Test_Hub_NilMessageIsIgnored(t *testing.T) {
	hub := NewHub(&logger.Logger{})

	sub, err := hub.SubscribeMessages(context.Background(), "alice:bob")
	require.NoError(t, err)
	defer sub.Close()

	hub.Publish(nil)
	assert.Empty(t, sub.Events())
}
