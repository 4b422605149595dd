package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pulsechat/common"
	"pulsechat/logging"
	"pulsechat/models"
)

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

type fakeStore struct {
	users   map[int64]*models.User
	stories []models.Story
	steps   []string
	failOn  string
	deleted []int64
}

func (f *fakeStore) record(step string) error {
	f.steps = append(f.steps, step)
	if f.failOn == step {
		return errors.New(step + " boom")
	}
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) StoriesByUser(_ context.Context, _ int64) ([]models.Story, error) {
	return f.stories, nil
}

func (f *fakeStore) DeleteStoriesByUser(_ context.Context, _ int64) error {
	return f.record("stories")
}
func (f *fakeStore) DeleteCommentsByUser(_ context.Context, _ int64) error {
	return f.record("comments")
}
func (f *fakeStore) DeleteChatsByParticipant(_ context.Context, _ int64) error {
	return f.record("chats")
}
func (f *fakeStore) DeleteMessagesBySender(_ context.Context, _ int64) error {
	return f.record("messages")
}
func (f *fakeStore) DeleteContactsByUser(_ context.Context, _ int64) error {
	return f.record("contacts")
}
func (f *fakeStore) DeleteCallsByUser(_ context.Context, _ int64) error {
	return f.record("calls")
}
func (f *fakeStore) DeleteTicketsByUser(_ context.Context, _ int64) error {
	return f.record("tickets")
}
func (f *fakeStore) DeleteUser(_ context.Context, _ int64) error {
	return f.record("user")
}

func (f *fakeStore) ExpiredStories(_ context.Context, cutoff time.Time) ([]models.Story, error) {
	var out []models.Story
	for _, s := range f.stories {
		if s.ExpiresAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteStory(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeHost struct {
	deleted   []string
	deleteErr error
}

func (f *fakeHost) Upload(_ context.Context, payload, _ string) (string, error) {
	return payload, nil
}

func (f *fakeHost) Delete(_ context.Context, ref string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeHost) Hosted(ref string) bool {
	return len(ref) > 0 && ref[0] == 'h'
}

func TestPurgeUser_FullCascade(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		users: map[int64]*models.User{7: {ID: 7, Username: "mallory", Avatar: "hosted/avatar.png"}},
		stories: []models.Story{
			{ID: 1, UserID: 7, MediaURL: "hosted/story.mp4"},
			{ID: 2, UserID: 7, BackgroundURL: "data:image/png;base64,x"},
		},
	}
	host := &fakeHost{}

	results, err := NewService(store, host, nopLogger{}).PurgeUser(context.Background(), 7)
	require.NoError(t, err)

	require.Equal(t,
		[]string{"stories", "comments", "chats", "messages", "contacts", "calls", "tickets", "user"},
		store.steps)
	// Only hosted refs are cleaned; inline payloads have nothing to delete.
	require.Equal(t, []string{"hosted/avatar.png", "hosted/story.mp4"}, host.deleted)

	require.Len(t, results, 9)
	for _, r := range results {
		require.Empty(t, r.Err, r.Step)
	}
}

func TestPurgeUser_StepFailureKeepsUserRow(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		users:  map[int64]*models.User{7: {ID: 7}},
		failOn: "chats",
	}

	results, err := NewService(store, &fakeHost{}, nopLogger{}).PurgeUser(context.Background(), 7)
	require.Error(t, err)

	// Later steps still ran, but the user row was not deleted.
	require.Contains(t, store.steps, "tickets")
	require.NotContains(t, store.steps, "user")

	var failedSteps []string
	for _, r := range results {
		if r.Err != "" {
			failedSteps = append(failedSteps, r.Step)
		}
	}
	require.Equal(t, []string{"chats"}, failedSteps)
}

func TestPurgeUser_UnknownUser(t *testing.T) {
	t.Parallel()

	store := &fakeStore{users: map[int64]*models.User{}}

	_, err := NewService(store, &fakeHost{}, nopLogger{}).PurgeUser(context.Background(), 404)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.Empty(t, store.steps)
}

func TestSweepStories(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	grace := time.Hour

	store := &fakeStore{stories: []models.Story{
		// Expired well past the grace window: swept.
		{ID: 1, ExpiresAt: now.Add(-2 * time.Hour), MediaURL: "hosted/old.mp4"},
		// Expired but within grace: kept for now.
		{ID: 2, ExpiresAt: now.Add(-30 * time.Minute)},
		// Still live.
		{ID: 3, ExpiresAt: now.Add(6 * time.Hour)},
	}}
	host := &fakeHost{}

	removed, err := NewService(store, host, nopLogger{}).SweepStories(context.Background(), now, grace)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.Equal(t, []int64{1}, store.deleted)
	require.Equal(t, []string{"hosted/old.mp4"}, host.deleted)
}

func TestSweepStories_MediaFailureStillDeletesRow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{stories: []models.Story{
		{ID: 1, ExpiresAt: now.Add(-2 * time.Hour), MediaURL: "hosted/old.mp4"},
	}}

	removed, err := NewService(store, &fakeHost{deleteErr: common.ErrUpstreamUnavailable}, nopLogger{}).
		SweepStories(context.Background(), now, time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.Equal(t, []int64{1}, store.deleted)
}
