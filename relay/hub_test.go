package relay

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pulsechat/models"
)

func TestHub_JoinLeaveIdempotent(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	c := newClient(nil, 1)

	hub.Join(c, InboxRoom(1))
	hub.Join(c, InboxRoom(1))
	require.Equal(t, 1, hub.RoomSize(InboxRoom(1)))

	hub.Leave(c, InboxRoom(1))
	hub.Leave(c, InboxRoom(1))
	require.Equal(t, 0, hub.RoomSize(InboxRoom(1)))

	// Leaving a room never joined is harmless.
	hub.Leave(c, ChatRoom(99))
}

func TestHub_EmitCountsReceivers(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	a := newClient(nil, 1)
	b := newClient(nil, 2)
	hub.Join(a, ChatRoom(7))
	hub.Join(b, ChatRoom(7))

	n := hub.Emit(ChatRoom(7), models.ServerEvent{Type: models.EventNewMessage})
	require.Equal(t, 2, n)

	require.Equal(t, 0, hub.Emit(ChatRoom(8), models.ServerEvent{Type: models.EventNewMessage}))
}

func TestHub_DisconnectLeavesAllRooms(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	c := newClient(nil, 1)
	hub.Join(c, InboxRoom(1))
	hub.Join(c, ChatRoom(7))
	hub.Join(c, ChatRoom(8))

	hub.Disconnect(c)
	require.Equal(t, 0, hub.RoomSize(InboxRoom(1)))
	require.Equal(t, 0, hub.RoomSize(ChatRoom(7)))
	require.Equal(t, 0, hub.RoomSize(ChatRoom(8)))

	// Disconnect twice must not close the channel twice.
	hub.Disconnect(c)

	// A disconnected client cannot rejoin and is never emitted to.
	hub.Join(c, InboxRoom(1))
	require.Equal(t, 0, hub.RoomSize(InboxRoom(1)))
	require.False(t, hub.EmitTo(c, models.ServerEvent{Type: models.EventDeliveryError}))
}

func TestHub_StalledClientIsDropped(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	slow := newClient(nil, 1)
	fast := newClient(nil, 2)
	hub.Join(slow, ChatRoom(7))
	hub.Join(fast, ChatRoom(7))

	for i := 0; i < sendBuffer; i++ {
		hub.Emit(ChatRoom(7), models.ServerEvent{Type: models.EventNewMessage})
		<-fast.send
	}

	// slow's buffer is now full; fast still receives, and slow is
	// disconnected so its reader comes back with a fresh sync.
	n := hub.Emit(ChatRoom(7), models.ServerEvent{Type: models.EventNewMessage})
	require.Equal(t, 1, n)
	require.Equal(t, 1, hub.RoomSize(ChatRoom(7)))
	require.False(t, hub.EmitTo(slow, models.ServerEvent{Type: models.EventNewMessage}))

	// fast is unaffected by the drop.
	require.True(t, hub.EmitTo(fast, models.ServerEvent{Type: models.EventNewMessage}))
}
