package readmodel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pulsechat/common"
	"pulsechat/models"
)

type fakeStore struct {
	chats    map[int64]*models.Chat
	byUser   map[int64][]models.Chat
	users    map[int64]*models.User
	latest   map[int64]*models.Message
	usersErr error
}

func (f *fakeStore) ChatsByParticipant(_ context.Context, userID int64) ([]models.Chat, error) {
	return f.byUser[userID], nil
}

func (f *fakeStore) GetChat(_ context.Context, id int64) (*models.Chat, error) {
	c, ok := f.chats[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) LatestMessage(_ context.Context, chatID int64) (*models.Message, error) {
	return f.latest[chatID], nil
}

func at(hour int) time.Time {
	return time.Date(2025, 3, 1, hour, 0, 0, 0, time.UTC)
}

func newFixture() *fakeStore {
	alice := &models.User{ID: 1, Username: "alice", LastSeen: at(9)}
	bob := &models.User{ID: 2, Username: "bob", Avatar: "https://cdn/b.png", LastSeen: at(8)}
	carol := &models.User{ID: 3, Username: "carol", LastSeen: at(7)}

	chatAB := models.Chat{ID: 10, ParticipantOneID: 1, ParticipantTwoID: 2, CreatedAt: at(1)}
	chatAC := models.Chat{ID: 11, ParticipantOneID: 1, ParticipantTwoID: 3, CreatedAt: at(2)}

	return &fakeStore{
		chats:  map[int64]*models.Chat{10: &chatAB, 11: &chatAC},
		byUser: map[int64][]models.Chat{1: {chatAB, chatAC}},
		users:  map[int64]*models.User{1: alice, 2: bob, 3: carol},
		latest: map[int64]*models.Message{
			10: {ID: 100, ChatID: 10, SenderID: 2, Type: models.MessageText, Content: "hey", IsRead: false, CreatedAt: at(5)},
		},
	}
}

func TestListConversations_OrderAndShape(t *testing.T) {
	t.Parallel()

	svc := NewService(newFixture())

	summaries, err := svc.ListConversations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Chat 10 has a message at 05:00; chat 11 is empty and falls back to
	// its creation time of 02:00, so chat 10 sorts first.
	require.Equal(t, int64(10), summaries[0].ChatID)
	require.Equal(t, "bob", summaries[0].ParticipantName)
	require.Equal(t, "https://cdn/b.png", summaries[0].ParticipantAvatar)
	require.Equal(t, "hey", summaries[0].LastMessage)
	require.False(t, summaries[0].IsRead)
	require.NotNil(t, summaries[0].LastMessageAt)
	require.Equal(t, at(5), *summaries[0].LastMessageAt)

	require.Equal(t, int64(11), summaries[1].ChatID)
	require.Equal(t, "carol", summaries[1].ParticipantName)
	require.Empty(t, summaries[1].LastMessage)
	require.Nil(t, summaries[1].LastMessageAt)
	require.True(t, summaries[1].IsRead)
}

func TestListConversations_ReadFlagMirrorsLastMessage(t *testing.T) {
	t.Parallel()

	store := newFixture()
	store.latest[10] = &models.Message{
		ID: 101, ChatID: 10, SenderID: 1, Type: models.MessageText,
		Content: "on my way", IsRead: false, CreatedAt: at(6),
	}

	// The sender sees their own unread message as unread too; the summary
	// flipping to read later is how the read receipt reaches them.
	summaries, err := NewService(store).ListConversations(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, summaries[0].IsRead)
	require.Equal(t, int64(1), summaries[0].LastMessageSenderID)

	store.latest[10].IsRead = true
	summaries, err = NewService(store).ListConversations(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, summaries[0].IsRead)
}

func TestListConversations_MediaPreview(t *testing.T) {
	t.Parallel()

	store := newFixture()
	store.latest[10] = &models.Message{
		ID: 102, ChatID: 10, SenderID: 2, Type: models.MessageImage,
		Content: "Sent an image", MediaURL: "https://cdn/x.png", CreatedAt: at(6),
	}

	summaries, err := NewService(store).ListConversations(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "bob sent an image.", summaries[0].LastMessage)

	store.latest[10].SenderID = 1
	summaries, err = NewService(store).ListConversations(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "You sent an image.", summaries[0].LastMessage)
}

func TestListConversations_DropsUnresolvableParticipant(t *testing.T) {
	t.Parallel()

	store := newFixture()
	delete(store.users, 3)

	summaries, err := NewService(store).ListConversations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, int64(10), summaries[0].ChatID)
}

func TestListConversations_BadCaller(t *testing.T) {
	t.Parallel()

	svc := NewService(newFixture())

	_, err := svc.ListConversations(context.Background(), 0)
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = svc.ListConversations(context.Background(), -4)
	require.ErrorIs(t, err, common.ErrInvalidIdentifier)
}

func TestChatSummary_ForbiddenForOutsider(t *testing.T) {
	t.Parallel()

	svc := NewService(newFixture())

	_, err := svc.ChatSummary(context.Background(), 10, 3)
	require.ErrorIs(t, err, common.ErrForbidden)

	summary, err := svc.ChatSummary(context.Background(), 10, 2)
	require.NoError(t, err)
	require.Equal(t, "alice", summary.ParticipantName)
	// Bob sent the unread message; both sides mirror its flag.
	require.False(t, summary.IsRead)
	require.Equal(t, int64(2), summary.LastMessageSenderID)
}
