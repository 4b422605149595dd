package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pulsechat/common"
	"pulsechat/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, username, email string) *models.User {
	t.Helper()
	user, err := db.CreateUser(context.Background(), username, email, "hash", models.RoleUser)
	require.NoError(t, err)
	return user
}

func TestUsers_CreateAndLookup(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "alice", "alice@example.com")
	require.Equal(t, models.RoleUser, user.Role)
	require.False(t, user.IsDisabled)

	byEmail, err := db.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	_, err = db.GetUser(ctx, 999)
	require.ErrorIs(t, err, common.ErrNotFound)

	// Email is unique.
	_, err = db.CreateUser(ctx, "alice2", "alice@example.com", "hash", models.RoleUser)
	require.Error(t, err)
}

func TestChats_PairUniqueness(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "a@example.com")
	bob := seedUser(t, db, "bob", "b@example.com")

	chat, err := db.CreateChat(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	// The pair is normalized regardless of argument order.
	require.Equal(t, alice.ID, chat.ParticipantOneID)
	require.Equal(t, bob.ID, chat.ParticipantTwoID)

	// A second chat for the same pair violates the unique constraint,
	// argument order regardless.
	_, err = db.CreateChat(ctx, alice.ID, bob.ID)
	require.Error(t, err)

	found, err := db.GetChatByParticipants(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, chat.ID, found.ID)
}

func TestMessages_RoundTripAndMarkRead(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "a@example.com")
	bob := seedUser(t, db, "bob", "b@example.com")
	chat, err := db.CreateChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	latest, err := db.LatestMessage(ctx, chat.ID)
	require.NoError(t, err)
	require.Nil(t, latest)

	m1, err := db.CreateMessage(ctx, chat.ID, alice.ID, models.MessageText, "first", "")
	require.NoError(t, err)
	require.False(t, m1.IsRead)

	m2, err := db.CreateMessage(ctx, chat.ID, alice.ID, models.MessageImage, "Sent an image", "https://cdn/x.png")
	require.NoError(t, err)

	latest, err = db.LatestMessage(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, m2.ID, latest.ID)

	messages, err := db.MessagesByChat(ctx, chat.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, m2.ID, messages[0].ID)

	// Bob reading marks alice's messages; alice reading marks nothing.
	rows, err := db.MarkMessagesRead(ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), rows)

	// Marking read is idempotent.
	rows, err = db.MarkMessagesRead(ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	require.Zero(t, rows)

	got, err := db.GetMessage(ctx, m1.ID)
	require.NoError(t, err)
	require.True(t, got.IsRead)
}

func TestStories_ExpiryWindows(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	alice := seedUser(t, db, "alice", "a@example.com")

	live, err := db.CreateStory(ctx, &models.Story{
		UserID: alice.ID, Type: models.StoryImage, MediaURL: "https://cdn/live.png",
		BackgroundURL: models.DefaultStoryBackground,
		CreatedAt:     now, ExpiresAt: now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	expired, err := db.CreateStory(ctx, &models.Story{
		UserID: alice.ID, Type: models.StoryVideo, MediaURL: "https://cdn/old.mp4",
		CreatedAt: now.Add(-30 * time.Hour), ExpiresAt: now.Add(-6 * time.Hour),
	})
	require.NoError(t, err)

	active, err := db.ActiveStoriesForUser(ctx, alice.ID, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, live.ID, active[0].ID)
	require.Equal(t, "alice", active[0].Username)

	old, err := db.ExpiredStories(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, old, 1)
	require.Equal(t, expired.ID, old[0].ID)
}

func TestStories_VisibilityScopedToContacts(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	alice := seedUser(t, db, "alice", "a@example.com")
	bob := seedUser(t, db, "bob", "b@example.com")
	carol := seedUser(t, db, "carol", "c@example.com")
	dave := seedUser(t, db, "dave", "d@example.com")

	// bob is an accepted contact, carol's request is still pending, dave
	// is a stranger.
	accepted, err := db.CreateContact(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.NoError(t, db.AcceptContact(ctx, accepted.ID))
	_, err = db.CreateContact(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	for _, owner := range []*models.User{alice, bob, carol, dave} {
		_, err := db.CreateStory(ctx, &models.Story{
			UserID: owner.ID, Type: models.StoryImage, MediaURL: "x",
			CreatedAt: now, ExpiresAt: now.Add(time.Hour),
		})
		require.NoError(t, err)
	}

	visible, err := db.ActiveStoriesForUser(ctx, alice.ID, now)
	require.NoError(t, err)
	require.Len(t, visible, 2)

	owners := []string{visible[0].Username, visible[1].Username}
	require.ElementsMatch(t, []string{"alice", "bob"}, owners)
}

func TestStories_LikesFloorAtZero(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	alice := seedUser(t, db, "alice", "a@example.com")
	story, err := db.CreateStory(ctx, &models.Story{
		UserID: alice.ID, Type: models.StoryImage, MediaURL: "x",
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, db.AdjustStoryLikes(ctx, story.ID, 1))
	require.NoError(t, db.AdjustStoryLikes(ctx, story.ID, -1))
	require.NoError(t, db.AdjustStoryLikes(ctx, story.ID, -1))

	got, err := db.GetStory(ctx, story.ID)
	require.NoError(t, err)
	require.Zero(t, got.Likes)
}

func TestComments_TreeAssembly(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	alice := seedUser(t, db, "alice", "a@example.com")
	bob := seedUser(t, db, "bob", "b@example.com")
	story, err := db.CreateStory(ctx, &models.Story{
		UserID: alice.ID, Type: models.StoryImage, MediaURL: "x",
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	top, err := db.CreateComment(ctx, story.ID, bob.ID, nil, "nice")
	require.NoError(t, err)
	reply, err := db.CreateComment(ctx, story.ID, alice.ID, &top.ID, "thanks")
	require.NoError(t, err)

	tree, err := db.CommentsByStory(ctx, story.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, top.ID, tree[0].ID)
	require.Equal(t, "bob", tree[0].Username)
	require.Len(t, tree[0].Replies, 1)
	require.Equal(t, reply.ID, tree[0].Replies[0].ID)

	// Deleting the top-level comment takes its replies with it.
	require.NoError(t, db.DeleteComment(ctx, top.ID))
	_, err = db.GetComment(ctx, reply.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestContacts_Lifecycle(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "a@example.com")
	bob := seedUser(t, db, "bob", "b@example.com")

	contact, err := db.CreateContact(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, models.ContactStatusPending, contact.Status)
	require.Equal(t, bob.ID, contact.RequesterID)
	require.Equal(t, alice.ID, contact.InvitedParty())

	// One relationship per pair.
	_, err = db.CreateContact(ctx, alice.ID, bob.ID)
	require.Error(t, err)

	require.NoError(t, db.AcceptContact(ctx, contact.ID))
	// Accepting twice finds no pending row.
	require.ErrorIs(t, db.AcceptContact(ctx, contact.ID), common.ErrNotFound)

	contacts, err := db.ContactsByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.Equal(t, "bob", contacts[0].User.Username)
	require.Equal(t, models.ContactStatusAccepted, contacts[0].Status)
}

func TestCounts(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	alice := seedUser(t, db, "alice", "a@example.com")
	bob := seedUser(t, db, "bob", "b@example.com")
	require.NoError(t, db.SetUserDisabled(ctx, bob.ID, true))

	chat, err := db.CreateChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = db.CreateMessage(ctx, chat.ID, alice.ID, models.MessageText, "hi", "")
	require.NoError(t, err)

	_, err = db.CreateStory(ctx, &models.Story{
		UserID: alice.ID, Type: models.StoryImage, MediaURL: "x",
		CreatedAt: now, ExpiresAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = db.CreateTicket(ctx, &models.SupportTicket{
		UserID: alice.ID, Subject: "s", Message: "m",
		Category: models.TicketCategoryOther, Priority: models.TicketPriorityLow,
	})
	require.NoError(t, err)

	counts, err := db.Counts(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts["users"])
	require.Equal(t, int64(1), counts["disabled_users"])
	require.Equal(t, int64(1), counts["chats"])
	require.Equal(t, int64(1), counts["messages"])
	require.Equal(t, int64(0), counts["active_stories"])
	require.Equal(t, int64(1), counts["open_tickets"])
}

func TestPurgeCascadeQueries(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "a@example.com")
	bob := seedUser(t, db, "bob", "b@example.com")

	chat, err := db.CreateChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = db.CreateMessage(ctx, chat.ID, bob.ID, models.MessageText, "hi", "")
	require.NoError(t, err)

	require.NoError(t, db.DeleteChatsByParticipant(ctx, alice.ID))

	// The chat and every message in it are gone, bob's included.
	_, err = db.GetChat(ctx, chat.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	messages, err := db.MessagesByChat(ctx, chat.ID, 50, 0)
	require.NoError(t, err)
	require.Empty(t, messages)

	require.NoError(t, db.DeleteUser(ctx, alice.ID))
	require.ErrorIs(t, db.DeleteUser(ctx, alice.ID), common.ErrNotFound)
}
