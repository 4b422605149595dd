// Package cleanup owns the destructive maintenance paths: purging a user
// and everything they touched, and sweeping expired stories off storage.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"pulsechat/logging"
	"pulsechat/media"
	"pulsechat/models"
)

// Store is the slice of storage cleanup operates on.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	StoriesByUser(ctx context.Context, userID int64) ([]models.Story, error)
	DeleteStoriesByUser(ctx context.Context, userID int64) error
	DeleteCommentsByUser(ctx context.Context, userID int64) error
	DeleteChatsByParticipant(ctx context.Context, userID int64) error
	DeleteMessagesBySender(ctx context.Context, senderID int64) error
	DeleteContactsByUser(ctx context.Context, userID int64) error
	DeleteCallsByUser(ctx context.Context, userID int64) error
	DeleteTicketsByUser(ctx context.Context, userID int64) error
	DeleteUser(ctx context.Context, id int64) error

	ExpiredStories(ctx context.Context, cutoff time.Time) ([]models.Story, error)
	DeleteStory(ctx context.Context, id int64) error
}

// StepResult records the outcome of one cascade step.
type StepResult struct {
	Step string `json:"step"`
	Err  string `json:"error,omitempty"`
}

// Service runs the cascades.
type Service struct {
	store Store
	media media.Host
	log   logging.Logger
}

func NewService(store Store, host media.Host, log logging.Logger) *Service {
	return &Service{store: store, media: host, log: log}
}

// PurgeUser deletes a user and every record that references them: stories
// and their comments, comments on others' stories, chats with all their
// messages, contacts, call history, and support tickets. Steps that fail
// are reported but do not stop the cascade; the user row itself is only
// removed when every step succeeded, so a partial purge can be retried.
func (s *Service) PurgeUser(ctx context.Context, userID int64) ([]StepResult, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Collect hosted media refs before the rows disappear.
	var refs []string
	if user.Avatar != "" && s.media.Hosted(user.Avatar) {
		refs = append(refs, user.Avatar)
	}
	stories, err := s.store.StoriesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, story := range stories {
		for _, ref := range []string{story.MediaURL, story.BackgroundURL} {
			if ref != "" && s.media.Hosted(ref) {
				refs = append(refs, ref)
			}
		}
	}

	steps := []struct {
		name string
		run  func(context.Context, int64) error
	}{
		{"stories", s.store.DeleteStoriesByUser},
		{"comments", s.store.DeleteCommentsByUser},
		{"chats", s.store.DeleteChatsByParticipant},
		{"messages", s.store.DeleteMessagesBySender},
		{"contacts", s.store.DeleteContactsByUser},
		{"calls", s.store.DeleteCallsByUser},
		{"tickets", s.store.DeleteTicketsByUser},
	}

	results := make([]StepResult, 0, len(steps)+2)
	failed := false
	for _, step := range steps {
		result := StepResult{Step: step.name}
		if err := step.run(ctx, userID); err != nil {
			failed = true
			result.Err = err.Error()
			s.log.Error(ctx, "purge step failed", "step", step.name, "user_id", userID, "error", err)
		}
		results = append(results, result)
	}

	// Object storage cleanup is best-effort and never blocks the purge.
	mediaResult := StepResult{Step: "media"}
	for _, ref := range refs {
		if err := s.media.Delete(ctx, ref); err != nil {
			mediaResult.Err = err.Error()
			s.log.Warn(ctx, "purge media cleanup failed", "ref", ref, "error", err)
		}
	}
	results = append(results, mediaResult)

	if failed {
		return results, fmt.Errorf("purge of user %d incomplete", userID)
	}

	userResult := StepResult{Step: "user"}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		userResult.Err = err.Error()
		results = append(results, userResult)
		return results, err
	}
	results = append(results, userResult)

	s.log.Info(ctx, "user purged", "user_id", userID, "username", user.Username)
	return results, nil
}

// SweepStories deletes stories that expired before now minus the grace
// window, hosted media included. Returns how many stories were removed.
// The grace window keeps a just-expired story readable while clients that
// loaded it moments earlier finish with it.
func (s *Service) SweepStories(ctx context.Context, now time.Time, grace time.Duration) (int, error) {
	expired, err := s.store.ExpiredStories(ctx, now.Add(-grace))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, story := range expired {
		for _, ref := range []string{story.MediaURL, story.BackgroundURL} {
			if ref != "" && s.media.Hosted(ref) {
				if err := s.media.Delete(ctx, ref); err != nil {
					s.log.Warn(ctx, "sweep media cleanup failed", "story_id", story.ID, "error", err)
				}
			}
		}
		if err := s.store.DeleteStory(ctx, story.ID); err != nil {
			s.log.Error(ctx, "sweep delete failed", "story_id", story.ID, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.Info(ctx, "expired stories swept", "count", removed)
	}
	return removed, nil
}

// RunSweeper sweeps on the interval until the context is canceled. One
// sweep runs immediately on start so restarts do not delay expiry.
func (s *Service) RunSweeper(ctx context.Context, interval, grace time.Duration) {
	if _, err := s.SweepStories(ctx, time.Now().UTC(), grace); err != nil {
		s.log.Error(ctx, "story sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepStories(ctx, time.Now().UTC(), grace); err != nil {
				s.log.Error(ctx, "story sweep failed", "error", err)
			}
		}
	}
}
