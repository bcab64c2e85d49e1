package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fbclone/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PublishUserWithoutRedis(t *testing.T) {
	// Notifier with nil Redis should return nil error (fail-open/noop)
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
		id, ok := ParseUserChannel(tt.expected)
		assert.True(t, ok)
		assert.Equal(t, tt.userID, id)
	}

	for _, bad := range []string{"notifications:user:", "notifications:user:0", "notifications:user:x", "chat:conv:1"} {
		_, ok := ParseUserChannel(bad)
		assert.False(t, ok, bad)
	}
}

func TestHub_StartWiringDeliversPublishedNotification(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	client, err := hub.Register(42, nil)
	require.NoError(t, err)

	notifier := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, notifier))

	postID := uint(7)
	require.NoError(t, notifier.PublishNotification(ctx, &models.Notification{
		ID: 1, ReceiverID: 42, TriggerID: 2, Type: models.NotificationReaction, PostID: &postID, Info: "reacted",
	}))

	select {
	case msg := <-client.Send:
		var event struct {
			Type    string              `json:"type"`
			Payload models.Notification `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventNotification, event.Type)
		assert.Equal(t, uint(42), event.Payload.ReceiverID)
		assert.Equal(t, models.NotificationReaction, event.Payload.Type)
	case <-time.After(time.Second):
		t.Fatal("notification was not delivered")
	}
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	payloads := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, payload string) {
		payloads <- payload
	}))

	require.NoError(t, n.PublishUser(context.Background(), 1, "before-cancel"))
	assert.Eventually(t, func() bool { return len(payloads) == 1 }, time.Second, 10*time.Millisecond)
	<-payloads

	cancel()
	time.Sleep(20 * time.Millisecond)

	_ = n.PublishUser(context.Background(), 1, "after-cancel")
	assert.Never(t, func() bool { return len(payloads) > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}
