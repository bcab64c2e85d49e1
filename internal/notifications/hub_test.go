package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(10, nil)
	require.NoError(t, err)
	b, err := hub.Register(10, nil)
	require.NoError(t, err)
	other, err := hub.Register(11, nil)
	require.NoError(t, err)

	hub.Broadcast(10, "hello")

	assert.Equal(t, "hello", string(<-a.Send))
	assert.Equal(t, "hello", string(<-b.Send))
	assert.Empty(t, other.Send)
	assert.True(t, hub.IsOnline(10))
	assert.Equal(t, 3, hub.ConnectionCount())
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(3, nil)
	require.NoError(t, err)

	hub.UnregisterClient(client)
	hub.UnregisterClient(client)

	assert.False(t, hub.IsOnline(3))
	assert.Equal(t, 0, hub.ConnectionCount())
	_, open := <-client.Send
	assert.False(t, open)

	// Sending to a closed client must not panic.
	assert.NotPanics(t, func() { client.TrySend([]byte("late")) })
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrUserConnsMax)

	_, err = hub.Register(2, nil)
	assert.NoError(t, err)
}

func TestHub_Dispatch(t *testing.T) {
	hub := NewHub()
	a, _ := hub.Register(5, nil)
	b, _ := hub.Register(6, nil)

	hub.Dispatch(UserChannel(5), "for-five")
	hub.Dispatch("notifications:user:abc", "ignored")
	hub.Dispatch(UserChannel(6), "for-six")

	assert.Equal(t, "for-five", string(<-a.Send))
	assert.Equal(t, "for-six", string(<-b.Send))
	assert.Empty(t, a.Send)
	assert.Empty(t, b.Send)
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	client, _ := hub.Register(8, nil)

	for i := 0; i < sendBuffer; i++ {
		client.TrySend([]byte("x"))
	}
	client.TrySend([]byte("overflow"))

	assert.Len(t, client.Send, sendBuffer)
	for i := 0; i < sendBuffer; i++ {
		assert.Equal(t, "x", string(<-client.Send))
	}
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	client, _ := hub.Register(9, nil)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, open := <-client.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ConnectionCount())

	_, err := hub.Register(9, nil)
	assert.ErrorIs(t, err, ErrHubClosed)

	// The pump's deferred unregister after shutdown is harmless.
	assert.NotPanics(t, func() { hub.UnregisterClient(client) })
}

func TestClient_SendEventEncodes(t *testing.T) {
	hub := NewHub()
	client, _ := hub.Register(4, nil)

	require.NoError(t, client.SendEvent(Event{Type: "unread_count", Payload: map[string]int{"count": 2}}))
	assert.JSONEq(t, `{"type":"unread_count","payload":{"count":2}}`, string(<-client.Send))
}
